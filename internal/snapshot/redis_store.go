package snapshot

import (
	"context"
	"encoding/json"

	"github.com/redis/rueidis"
)

// RedisStore shares snapshots between several client instances on one machine.
type RedisStore struct {
	client rueidis.Client
	prefix string
}

func NewRedisStore(client rueidis.Client, prefix string) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (r *RedisStore) Save(ctx context.Context, key string, value any) error {
	if key == "" {
		return ErrEmptyKey
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cmd := r.client.B().Set().Key(r.prefix + key).Value(string(payload)).Build()
	return r.client.Do(ctx, cmd).Error()
}

func (r *RedisStore) Load(ctx context.Context, key string, dest any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	cmd := r.client.B().Get().Key(r.prefix + key).Build()
	payload, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (r *RedisStore) Delete(ctx context.Context, key string) error {
	cmd := r.client.B().Del().Key(r.prefix + key).Build()
	return r.client.Do(ctx, cmd).Error()
}
