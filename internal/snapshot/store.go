package snapshot

import (
	"context"
	"errors"
)

// Store is a durable key-value cache. Values are JSON documents.
type Store interface {
	Save(ctx context.Context, key string, value any) error

	// Load decodes the value under key into dest. It reports false when the key is absent.
	Load(ctx context.Context, key string, dest any) (bool, error)

	Delete(ctx context.Context, key string) error
}

const (
	KeyTasks          = "tasks"
	KeyGroups         = "groups"
	KeyUsers          = "users"
	KeyAccessToken    = "access_token"
	KeyReminderHandle = "notificationTimeouts"
)

var ErrEmptyKey = errors.New("snapshot key is required")
