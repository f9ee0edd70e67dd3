package jobsrv

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded is the cancellation cause of a search replaced by a newer one
var ErrSuperseded = errors.New("superseded by a newer search")

type flight struct {
	id     uint64
	cancel context.CancelCauseFunc
}

// Superseder keeps at most one live search per key
type Superseder struct {
	mu       sync.Mutex
	next     uint64
	inflight map[string]flight
}

func NewSuperseder() *Superseder {
	return &Superseder{inflight: make(map[string]flight)}
}

// Begin starts a search for key, canceling the previous search for the same
// key. done must be called when the search finishes.
func (s *Superseder) Begin(ctx context.Context, key string) (context.Context, func()) {
	if key == "" {
		return ctx, func() {}
	}

	ctx, cancel := context.WithCancelCause(ctx)

	s.mu.Lock()
	s.next++
	id := s.next
	if prev, ok := s.inflight[key]; ok {
		prev.cancel(ErrSuperseded)
	}
	s.inflight[key] = flight{id: id, cancel: cancel}
	s.mu.Unlock()

	return ctx, func() {
		s.mu.Lock()
		if cur, ok := s.inflight[key]; ok && cur.id == id {
			delete(s.inflight, key)
		}
		s.mu.Unlock()
		cancel(context.Canceled)
	}
}

// InFlight returns the number of keys with a live search
func (s *Superseder) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}
