package watcher

import "context"

// slots bounds how many inbox files are handled at once
type slots struct {
	ch chan struct{}
}

func newSlots(n int) *slots {
	if n < 1 {
		n = 1
	}
	return &slots{ch: make(chan struct{}, n)}
}

// take waits for a free slot and returns the func that gives it back
func (s *slots) take(ctx context.Context) (func(), error) {
	select {
	case s.ch <- struct{}{}:
		return func() { <-s.ch }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// busy is the number of slots in use
func (s *slots) busy() int {
	return len(s.ch)
}
