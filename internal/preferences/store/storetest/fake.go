// Package storetest provides a controllable preference store for tests of
// the layers above it.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"reviewapp/internal/preferences/store"
	"reviewapp/pkg/platform/sentinel"
)

// Fake is an in-memory store that counts loads and can block or fail on demand.
type Fake struct {
	mu      sync.Mutex
	values  map[store.Key]string
	loadErr map[store.Key]error
	saveErr error
	gate    chan struct{}
	loads   map[store.Key]int
	saves   map[store.Key][]string
}

func NewFake() *Fake {
	return &Fake{
		values:  make(map[store.Key]string),
		loadErr: make(map[store.Key]error),
		loads:   make(map[store.Key]int),
		saves:   make(map[store.Key][]string),
	}
}

// Seed sets a persisted value without recording a save.
func (f *Fake) Seed(key store.Key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}

// FailLoads makes every Load of key return err (wrapped in ErrStorage).
// A nil err clears the failure.
func (f *Fake) FailLoads(key store.Key, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.loadErr, key)
		return
	}
	f.loadErr[key] = err
}

// FailSaves makes every Save return err (wrapped in ErrStorage). Nil clears it.
func (f *Fake) FailSaves(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saveErr = err
}

// Block holds every subsequent Load until the returned release func is called
// or the caller's context ends.
func (f *Fake) Block() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.gate == gate {
				f.gate = nil
			}
			f.mu.Unlock()
			close(gate)
		})
	}
}

// Loads reports how many times key was loaded.
func (f *Fake) Loads(key store.Key) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads[key]
}

// Saves returns every value saved under key, oldest first.
func (f *Fake) Saves(key store.Key) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.saves[key]...)
}

// Value returns the persisted value of key.
func (f *Fake) Value(key store.Key) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *Fake) Load(ctx context.Context, key store.Key) (string, error) {
	f.mu.Lock()
	f.loads[key]++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", store.ErrStorage, ctx.Err())
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.loadErr[key]; ok {
		return "", fmt.Errorf("%w: %w", store.ErrStorage, err)
	}
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", sentinel.ErrNotFound
}

func (f *Fake) Save(_ context.Context, key store.Key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return fmt.Errorf("%w: %w", store.ErrStorage, f.saveErr)
	}
	f.values[key] = value
	f.saves[key] = append(f.saves[key], value)
	return nil
}
