// Package store persists user preferences as opaque string values under a
// small fixed set of keys. Every backend is asynchronous from the caller's
// point of view (context-bound, may fail) and treats Save as last-write-wins.
package store

import (
	"context"
	"errors"
)

// Key names a persisted preference.
type Key string

const (
	KeyThemeMode Key = "theme_mode"
	KeyUserID    Key = "user_id"
)

func (k Key) String() string {
	return string(k)
}

// ErrStorage marks a backend read or write failure. Callers fall back to a
// default (reads) or keep the in-memory value (writes).
var ErrStorage = errors.New("preference storage failure")

// Store is the persistence contract for preferences.
// Load returns sentinel.ErrNotFound when the key has never been saved.
type Store interface {
	Load(ctx context.Context, key Key) (string, error)
	Save(ctx context.Context, key Key, value string) error
}

// BatchLoader is implemented by stores that can read several keys in one
// round trip. Missing keys are absent from the result.
type BatchLoader interface {
	LoadMany(ctx context.Context, keys []Key) (map[Key]string, error)
}

// LoadMany reads keys through s, using a single round trip when s supports it.
// Keys that are missing or fail individually are left out; only a batch
// failure is returned.
func LoadMany(ctx context.Context, s Store, keys []Key) (map[Key]string, error) {
	if b, ok := s.(BatchLoader); ok {
		return b.LoadMany(ctx, keys)
	}
	out := make(map[Key]string, len(keys))
	for _, key := range keys {
		value, err := s.Load(ctx, key)
		if err != nil {
			continue
		}
		out[key] = value
	}
	return out, nil
}
