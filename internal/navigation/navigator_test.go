package navigation_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"reviewapp/internal/navigation"
	"reviewapp/internal/platform/logger"
	"reviewapp/pkg/testutil"
)

type recorder struct {
	ops      []string
	failures int
}

func (r *recorder) IncrementNavigation(op string) { r.ops = append(r.ops, op) }
func (r *recorder) IncrementDeepLinkFailures()    { r.failures++ }

type NavigatorSuite struct {
	suite.Suite
	nav     *navigation.Navigator
	metrics *recorder
	seen    []navigation.Route
}

func TestNavigatorSuite(t *testing.T) {
	suite.Run(t, new(NavigatorSuite))
}

func (s *NavigatorSuite) SetupTest() {
	s.metrics = &recorder{}
	s.seen = nil
	s.nav = navigation.NewNavigator(
		navigation.WithLogger(logger.Discard()),
		navigation.WithMetrics(s.metrics),
	)
	s.nav.Subscribe(func(r navigation.Route) { s.seen = append(s.seen, r) })
}

func (s *NavigatorSuite) TestObserversSeeEveryMutation() {
	details := navigation.ProductDetails{ProductID: "42"}
	s.Require().NoError(s.nav.Push(details))
	s.Require().NoError(s.nav.Push(navigation.AIAssistant{ProductID: "42", ProductName: "Lamp"}))
	popped, ok := s.nav.Pop()
	s.True(ok)
	s.Equal(navigation.AIAssistant{ProductID: "42", ProductName: "Lamp"}, popped)
	s.nav.ResetToRoot()

	s.Equal([]navigation.Route{
		details,
		navigation.AIAssistant{ProductID: "42", ProductName: "Lamp"},
		details,
		navigation.ProductList{},
	}, s.seen)
	s.Equal([]string{navigation.OpPush, navigation.OpPush, navigation.OpPop, navigation.OpReset}, s.metrics.ops)
}

func (s *NavigatorSuite) TestPushRejectsMissingParams() {
	err := s.nav.Push(navigation.ProductDetails{})
	s.ErrorIs(err, navigation.ErrInvalidRoute)
	s.ErrorIs(s.nav.Push(nil), navigation.ErrInvalidRoute)
	s.Equal(1, s.nav.Len())
	s.Empty(s.seen)
}

func (s *NavigatorSuite) TestPopAtRootKeepsRoot() {
	_, ok := s.nav.Pop()
	s.False(ok)
	s.Equal(1, s.nav.Len())
	s.Equal(navigation.Root(), s.nav.Current())
}

func (s *NavigatorSuite) TestOpenPushesDecodedRoute() {
	r, err := s.nav.Open("ai_assistant/7/A%2FB")
	s.Require().NoError(err)
	s.Equal(navigation.AIAssistant{ProductID: "7", ProductName: "A/B"}, r)
	s.Equal(2, s.nav.Len())
	s.Equal(r, s.nav.Current())
}

func (s *NavigatorSuite) TestOpenUnknownPathFallsBackToRoot() {
	s.Require().NoError(s.nav.Push(navigation.Wishlist{}))

	r, err := s.nav.Open("settings/privacy")
	s.ErrorIs(err, navigation.ErrRouteDecode)
	s.Equal(navigation.Root(), r)
	s.Equal([]navigation.Route{navigation.Root()}, s.nav.Entries())
	s.Equal(1, s.metrics.failures)
}

func (s *NavigatorSuite) TestSnapshotRestore() {
	s.Require().NoError(s.nav.Push(navigation.ProductDetails{ProductID: "42", Name: "Lamp"}))
	s.Require().NoError(s.nav.Push(navigation.NotificationDetail{NotificationID: "n-1"}))
	data, err := s.nav.Snapshot()
	s.Require().NoError(err)

	restored := navigation.NewNavigator(navigation.WithLogger(logger.Discard()))
	s.Require().NoError(restored.Restore(data))
	s.Equal(s.nav.Entries(), restored.Entries())
}

func (s *NavigatorSuite) TestSnapshotFormat() {
	s.Require().NoError(s.nav.Push(navigation.NotificationDetail{NotificationID: "n-1"}))
	data, err := s.nav.Snapshot()
	s.Require().NoError(err)
	s.JSONEq(`[
		{"kind":"product_list"},
		{"kind":"notification_detail","params":{"notificationId":"n-1"}}
	]`, string(data))
}

func (s *NavigatorSuite) TestRestoreInvalidDataResetsToRoot() {
	for name, data := range map[string]string{
		"not json":      `{`,
		"empty":         `[]`,
		"unknown kind":  `[{"kind":"product_list"},{"kind":"settings"}]`,
		"missing param": `[{"kind":"product_list"},{"kind":"product_details","params":{}}]`,
		"wrong root":    `[{"kind":"wishlist"}]`,
		"bad params":    `[{"kind":"product_list"},{"kind":"ai_assistant","params":[1]}]`,
	} {
		s.Run(name, func() {
			s.Require().NoError(s.nav.Push(navigation.Wishlist{}))
			err := s.nav.Restore([]byte(data))
			s.ErrorIs(err, navigation.ErrInvalidSnapshot)
			s.Equal([]navigation.Route{navigation.Root()}, s.nav.Entries())
		})
	}
}

func (s *NavigatorSuite) TestUnsubscribe() {
	var count int
	unsubscribe := s.nav.Subscribe(func(navigation.Route) { count++ })
	s.Require().NoError(s.nav.Push(navigation.Wishlist{}))
	unsubscribe()
	s.Require().NoError(s.nav.Push(navigation.Notifications{}))
	s.Equal(1, count)
}

func (s *NavigatorSuite) TestCustomRoot() {
	nav := navigation.NewNavigator(navigation.WithRoot(navigation.Wishlist{}))
	s.Require().NoError(nav.Push(navigation.Notifications{}))
	nav.ResetToRoot()
	s.Equal(navigation.Wishlist{}, nav.Current())
}

func TestDeepLinkScenario(t *testing.T) {
	testutil.Given(t, "a user browsing a product", func(t *testing.T) {
		nav := navigation.NewNavigator(navigation.WithLogger(logger.Discard()))
		if err := nav.Push(navigation.ProductDetails{ProductID: "7"}); err != nil {
			t.Fatal(err)
		}

		testutil.When(t, "an assistant link with an escaped name is opened", func(t *testing.T) {
			r, err := nav.Open("ai_assistant/7/A%2FB")
			if err != nil {
				t.Fatal(err)
			}

			testutil.Then(t, "the assistant is on top of the product", func(t *testing.T) {
				if r != (navigation.AIAssistant{ProductID: "7", ProductName: "A/B"}) {
					t.Fatalf("unexpected route %#v", r)
				}
				if nav.Len() != 3 {
					t.Fatalf("expected depth 3, got %d", nav.Len())
				}
			})
		})

		testutil.When(t, "the user goes back twice", func(t *testing.T) {
			nav.Pop()
			nav.Pop()
			_, ok := nav.Pop()

			testutil.Then(t, "the root stays put", func(t *testing.T) {
				if ok || nav.Current() != navigation.Root() {
					t.Fatalf("expected to rest at root, got %#v", nav.Current())
				}
			})
		})
	})
}
