//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"academy-payments/internal/domain"
	"academy-payments/internal/domain/model"
	"academy-payments/internal/usecase"
)

// fakeClock fires every timer immediately so the poll loop runs without
// sleeping.
type fakeClock struct {
	mu     sync.Mutex
	afters int
}

func (c *fakeClock) Now() time.Time { return time.Unix(0, 0) }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.afters++
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Unix(0, 0)
	return ch
}

// scriptedStatus replays a fixed sequence of statuses, repeating the last
// entry once the script is exhausted.
type scriptedStatus struct {
	mu    sync.Mutex
	seq   []model.PaymentStatus
	errs  []error
	calls int
}

func (s *scriptedStatus) fn(ctx context.Context) (model.PaymentStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i >= len(s.seq) {
		i = len(s.seq) - 1
	}
	return s.seq[i], nil
}

func repeat(st model.PaymentStatus, n int) []model.PaymentStatus {
	out := make([]model.PaymentStatus, n)
	for i := range out {
		out[i] = st
	}
	return out
}

func TestVerifyPollerRun(t *testing.T) {
	ctx := context.Background()

	t.Run("completes on first poll", func(t *testing.T) {
		script := &scriptedStatus{seq: []model.PaymentStatus{model.PaymentStatusCompleted}}
		p := usecase.NewVerifyPoller(script.fn, &fakeClock{})

		if st := p.Run(ctx); st != usecase.PollStateCompleted {
			t.Fatalf("state = %s, want completed", st)
		}
		if p.Polls() != 1 {
			t.Fatalf("polls = %d, want 1", p.Polls())
		}
	})

	t.Run("completes on the final budgeted poll", func(t *testing.T) {
		// 11 pending responses, then completed on poll 12.
		seq := append(repeat(model.PaymentStatusPending, 11), model.PaymentStatusCompleted)
		script := &scriptedStatus{seq: seq}
		p := usecase.NewVerifyPoller(script.fn, &fakeClock{})

		if st := p.Run(ctx); st != usecase.PollStateCompleted {
			t.Fatalf("state = %s, want completed", st)
		}
		if p.Polls() != 12 {
			t.Fatalf("polls = %d, want 12", p.Polls())
		}
	})

	t.Run("times out after exactly twelve polls", func(t *testing.T) {
		script := &scriptedStatus{seq: repeat(model.PaymentStatusPending, 20)}
		p := usecase.NewVerifyPoller(script.fn, &fakeClock{})

		if st := p.Run(ctx); st != usecase.PollStateTimedOut {
			t.Fatalf("state = %s, want timed_out", st)
		}
		if p.Polls() != 12 {
			t.Fatalf("polls = %d, want 12", p.Polls())
		}
		if script.calls != 12 {
			t.Fatalf("status calls = %d, want 12", script.calls)
		}
		if !errors.Is(p.Err(), domain.ErrVerifyTimeout) {
			t.Fatalf("Err() = %v, want ErrVerifyTimeout", p.Err())
		}
	})

	t.Run("failed status ends the loop", func(t *testing.T) {
		seq := append(repeat(model.PaymentStatusPending, 2), model.PaymentStatusFailed)
		script := &scriptedStatus{seq: seq}
		p := usecase.NewVerifyPoller(script.fn, &fakeClock{})

		if st := p.Run(ctx); st != usecase.PollStateFailed {
			t.Fatalf("state = %s, want failed", st)
		}
		if p.Polls() != 3 {
			t.Fatalf("polls = %d, want 3", p.Polls())
		}
	})

	t.Run("transport errors keep the last state and spend budget", func(t *testing.T) {
		script := &scriptedStatus{
			seq:  repeat(model.PaymentStatusPending, 12),
			errs: []error{nil, errors.New("gateway 502"), nil},
		}
		p := usecase.NewVerifyPoller(script.fn, &fakeClock{})

		if st := p.Run(ctx); st != usecase.PollStateTimedOut {
			t.Fatalf("state = %s, want timed_out", st)
		}
		if p.Polls() != 12 {
			t.Fatalf("polls = %d, want 12: failed attempts count toward the cap", p.Polls())
		}
	})

	t.Run("cancellation stops the loop", func(t *testing.T) {
		script := &scriptedStatus{seq: repeat(model.PaymentStatusPending, 20)}
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		p := usecase.NewVerifyPoller(script.fn, &cancelBlockedClock{})

		if st := p.Run(cctx); st != usecase.PollStatePending {
			t.Fatalf("state = %s, want pending", st)
		}
		if p.Polls() != 1 {
			t.Fatalf("polls = %d, want 1", p.Polls())
		}
	})
}

// cancelBlockedClock never fires, so Run can only exit through ctx.Done.
type cancelBlockedClock struct{}

func (cancelBlockedClock) Now() time.Time { return time.Unix(0, 0) }

func (cancelBlockedClock) After(d time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

func TestVerifyPollerRefetch(t *testing.T) {
	ctx := context.Background()

	t.Run("does not touch the automatic counter", func(t *testing.T) {
		script := &scriptedStatus{seq: repeat(model.PaymentStatusPending, 5)}
		p := usecase.NewVerifyPoller(script.fn, &fakeClock{})

		if st := p.Refetch(ctx); st != usecase.PollStatePending {
			t.Fatalf("state = %s, want pending", st)
		}
		if p.Polls() != 0 {
			t.Fatalf("polls = %d, want 0", p.Polls())
		}
	})

	t.Run("works after timeout and can still complete", func(t *testing.T) {
		script := &scriptedStatus{seq: repeat(model.PaymentStatusPending, 12)}
		p := usecase.NewVerifyPoller(script.fn, &fakeClock{})
		if st := p.Run(ctx); st != usecase.PollStateTimedOut {
			t.Fatalf("state = %s, want timed_out", st)
		}

		script.mu.Lock()
		script.seq = []model.PaymentStatus{model.PaymentStatusCompleted}
		script.calls = 0
		script.mu.Unlock()

		if st := p.Refetch(ctx); st != usecase.PollStateCompleted {
			t.Fatalf("state after refetch = %s, want completed", st)
		}
		if p.Polls() != 12 {
			t.Fatalf("polls = %d, want 12 (refetch is not counted)", p.Polls())
		}
	})
}
