package navigation

// Stack is the back stack. The first entry is always the root route and the
// stack is never empty; Push, Pop and ResetToRoot are the only mutations.
// Stack is not safe for concurrent use; Navigator serializes access.
type Stack struct {
	root    Route
	entries []Route
}

// NewStack returns a stack holding only root. A nil root means Root().
func NewStack(root Route) *Stack {
	if root == nil {
		root = Root()
	}
	return &Stack{root: root, entries: []Route{root}}
}

// Push appends r. Pushing the current route again adds a second entry.
func (s *Stack) Push(r Route) {
	s.entries = append(s.entries, r)
}

// Pop removes and returns the top entry. At the root it does nothing and
// reports false.
func (s *Stack) Pop() (Route, bool) {
	if len(s.entries) <= 1 {
		return nil, false
	}
	top := s.entries[len(s.entries)-1]
	s.entries[len(s.entries)-1] = nil
	s.entries = s.entries[:len(s.entries)-1]
	return top, true
}

// ResetToRoot truncates the stack to the root entry.
func (s *Stack) ResetToRoot() {
	clear(s.entries[1:])
	s.entries = s.entries[:1]
	s.entries[0] = s.root
}

// Current is the visible screen: the last entry.
func (s *Stack) Current() Route {
	return s.entries[len(s.entries)-1]
}

func (s *Stack) Root() Route {
	return s.root
}

func (s *Stack) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the stack, root first.
func (s *Stack) Entries() []Route {
	return append([]Route(nil), s.entries...)
}
