package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"reviewapp/pkg/platform/sentinel"
)

type MemorySuite struct {
	suite.Suite
	store *Memory
	ctx   context.Context
}

func TestMemorySuite(t *testing.T) {
	suite.Run(t, new(MemorySuite))
}

func (s *MemorySuite) SetupTest() {
	s.store = NewMemory()
	s.ctx = context.Background()
}

func (s *MemorySuite) TestLoad() {
	s.Run("missing key is not found", func() {
		_, err := s.store.Load(s.ctx, KeyThemeMode)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("saved value is returned", func() {
		s.Require().NoError(s.store.Save(s.ctx, KeyUserID, "u-42"))
		value, err := s.store.Load(s.ctx, KeyUserID)
		s.Require().NoError(err)
		s.Equal("u-42", value)
	})

	s.Run("last write wins", func() {
		s.Require().NoError(s.store.Save(s.ctx, KeyThemeMode, "light"))
		s.Require().NoError(s.store.Save(s.ctx, KeyThemeMode, "dark"))
		value, err := s.store.Load(s.ctx, KeyThemeMode)
		s.Require().NoError(err)
		s.Equal("dark", value)
	})
}

func (s *MemorySuite) TestLoadManySkipsMissing() {
	s.Require().NoError(s.store.Save(s.ctx, KeyUserID, "u-1"))
	values, err := s.store.LoadMany(s.ctx, []Key{KeyUserID, KeyThemeMode})
	s.Require().NoError(err)
	s.Equal(map[Key]string{KeyUserID: "u-1"}, values)
}

func TestMemoryConcurrentSaves(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Save(ctx, KeyThemeMode, []string{"light", "dark", "system"}[i%3])
		}(i)
	}
	wg.Wait()

	value, err := m.Load(ctx, KeyThemeMode)
	require.NoError(t, err)
	assert.Contains(t, []string{"light", "dark", "system"}, value)
}

type loadOnly struct {
	values map[Key]string
}

func (l loadOnly) Load(_ context.Context, key Key) (string, error) {
	if v, ok := l.values[key]; ok {
		return v, nil
	}
	return "", sentinel.ErrNotFound
}

func (l loadOnly) Save(context.Context, Key, string) error { return nil }

func TestLoadManyWithoutBatchSupport(t *testing.T) {
	s := loadOnly{values: map[Key]string{KeyThemeMode: "dark"}}
	values, err := LoadMany(context.Background(), s, []Key{KeyThemeMode, KeyUserID})
	require.NoError(t, err)
	assert.Equal(t, map[Key]string{KeyThemeMode: "dark"}, values)
}
