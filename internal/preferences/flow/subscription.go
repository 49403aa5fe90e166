package flow

import "sync"

// Subscription is one consumer's view of a Flow. Values arrive on C in the
// order they were produced; a slow reader never blocks the Flow or other
// subscribers.
type Subscription[T any] struct {
	id     uint64
	cancel func(uint64)

	ch     chan T
	notify chan struct{}
	done   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	queue []T
}

func newSubscription[T any](id uint64, cancel func(uint64)) *Subscription[T] {
	s := &Subscription[T]{
		id:     id,
		cancel: cancel,
		ch:     make(chan T),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go s.run()
	return s
}

// C delivers values. It is closed after Cancel.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Done is closed once the subscription is cancelled.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Cancel stops delivery and detaches from the Flow. Safe to call repeatedly.
func (s *Subscription[T]) Cancel() {
	s.close(true)
}

func (s *Subscription[T]) close(detach bool) {
	s.once.Do(func() {
		close(s.done)
		if detach && s.cancel != nil {
			s.cancel(s.id)
		}
	})
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) run() {
	defer close(s.ch)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			select {
			case <-s.notify:
				continue
			case <-s.done:
				return
			}
		}
		v := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- v:
		case <-s.done:
			return
		}
	}
}
