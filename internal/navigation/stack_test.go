package navigation

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStackStartsAtRoot(t *testing.T) {
	s := NewStack(nil)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, Root(), s.Current())
}

func TestPushDoesNotDeduplicate(t *testing.T) {
	s := NewStack(nil)
	r := ProductDetails{ProductID: "7"}
	s.Push(r)
	s.Push(r)
	assert.Equal(t, []Route{ProductList{}, r, r}, s.Entries())
}

func TestPopAtRootIsNoop(t *testing.T) {
	s := NewStack(nil)
	r, ok := s.Pop()
	assert.False(t, ok)
	assert.Nil(t, r)
	assert.Equal(t, 1, s.Len())
}

func TestPopReturnsTop(t *testing.T) {
	s := NewStack(nil)
	s.Push(Wishlist{})
	s.Push(NotificationDetail{NotificationID: "n-1"})

	r, ok := s.Pop()
	require.True(t, ok)
	assert.Equal(t, NotificationDetail{NotificationID: "n-1"}, r)
	assert.Equal(t, Wishlist{}, s.Current())
}

func TestResetToRoot(t *testing.T) {
	s := NewStack(Wishlist{})
	s.Push(Notifications{})
	s.Push(AIAssistant{ProductID: "7", ProductName: "Lamp"})
	s.ResetToRoot()
	assert.Equal(t, []Route{Wishlist{}}, s.Entries())
}

func TestEntriesIsACopy(t *testing.T) {
	s := NewStack(nil)
	entries := s.Entries()
	entries[0] = Wishlist{}
	assert.Equal(t, Root(), s.Current())
}

func TestRootSurvivesAnySequence(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	routes := []Route{
		Notifications{},
		Wishlist{},
		ProductDetails{ProductID: "1"},
		AIAssistant{ProductID: "1", ProductName: "A/B"},
	}

	for run := range 50 {
		s := NewStack(nil)
		depth := 1
		for range 200 {
			switch rng.IntN(3) {
			case 0:
				s.Push(routes[rng.IntN(len(routes))])
				depth++
			case 1:
				before := s.Len()
				_, ok := s.Pop()
				if before == 1 {
					require.False(t, ok, "run %d", run)
				} else {
					depth--
				}
			case 2:
				s.ResetToRoot()
				depth = 1
			}
			require.Equal(t, depth, s.Len(), "run %d", run)
			require.GreaterOrEqual(t, s.Len(), 1, "run %d", run)
			require.Equal(t, Root(), s.Entries()[0], "run %d", run)
		}
	}
}
