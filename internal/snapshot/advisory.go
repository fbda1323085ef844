package snapshot

import (
	"context"

	"github.com/Oumaima1mal/task-pilot-front/internal/logging"
)

// Advisory wraps a Store so that no failure ever reaches the caller.
// A nil backend turns every call into a no-op.
type Advisory struct {
	backend Store
}

func NewAdvisory(backend Store) *Advisory {
	return &Advisory{backend: backend}
}

func (a *Advisory) Save(ctx context.Context, key string, value any) {
	if a == nil || a.backend == nil {
		return
	}
	if err := a.backend.Save(ctx, key, value); err != nil {
		logging.Logger.WithField("key", key).Warnf("snapshot save failed: %v", err)
	}
}

// Load reports whether dest was populated.
func (a *Advisory) Load(ctx context.Context, key string, dest any) bool {
	if a == nil || a.backend == nil {
		return false
	}
	ok, err := a.backend.Load(ctx, key, dest)
	if err != nil {
		logging.Logger.WithField("key", key).Warnf("snapshot load failed: %v", err)
		return false
	}
	return ok
}

func (a *Advisory) Delete(ctx context.Context, key string) {
	if a == nil || a.backend == nil {
		return
	}
	if err := a.backend.Delete(ctx, key); err != nil {
		logging.Logger.WithField("key", key).Warnf("snapshot delete failed: %v", err)
	}
}
