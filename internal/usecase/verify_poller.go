package usecase

import (
	"context"
	"sync"
	"time"

	"academy-payments/internal/domain"
	"academy-payments/internal/domain/model"
	"academy-payments/internal/infra/metrics"
)

// PollState is the verification poller's own state, distinct from the
// intent status it observes.
type PollState string

const (
	PollStateVerifying PollState = "verifying"
	PollStatePending   PollState = "pending"
	PollStateCompleted PollState = "completed"
	PollStateFailed    PollState = "failed"
	PollStateTimedOut  PollState = "timed_out"
)

const (
	// pollInterval is the fixed spacing between automatic polls.
	pollInterval = 5 * time.Second
	// maxPolls caps automatic polling at ~60 seconds. Hard cap, not
	// configurable per call.
	maxPolls = 12
)

// Clock abstracts time for the poller so tests can drive it without
// sleeping.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) Now() time.Time                         { return time.Now() }
func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// StatusFunc reports the current status of the intent under verification.
type StatusFunc func(ctx context.Context) (model.PaymentStatus, error)

// VerifyPoller polls an intent's status until it reaches a terminal state
// or the poll budget is exhausted. Polls are strictly sequential: the next
// poll is scheduled only after the previous response arrived.
type VerifyPoller struct {
	status StatusFunc
	clock  Clock
	mu     sync.Mutex
	state  PollState
	polls  int
}

// NewVerifyPoller builds a poller over status. A nil clock selects the real
// one.
func NewVerifyPoller(status StatusFunc, clock Clock) *VerifyPoller {
	if clock == nil {
		clock = realClock{}
	}
	return &VerifyPoller{status: status, clock: clock, state: PollStateVerifying}
}

// AutoVerify builds a poller that drives ConfirmAuto for one reference id.
// The verify endpoint stays read-only; this is what actually finalizes an
// intent while the client watches.
func AutoVerify(uc PaymentUseCase, referenceID string) *VerifyPoller {
	return NewVerifyPoller(func(ctx context.Context) (model.PaymentStatus, error) {
		p, err := uc.ConfirmAuto(ctx, referenceID)
		if err != nil {
			return "", err
		}
		return p.Status, nil
	}, nil)
}

// State returns the poller's current state. Safe to call concurrently with
// Run and Refetch.
func (p *VerifyPoller) State() PollState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Polls returns how many automatic polls have been issued.
func (p *VerifyPoller) Polls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.polls
}

// Err reports the poll budget being exhausted as an error, nil otherwise.
func (p *VerifyPoller) Err() error {
	if p.State() == PollStateTimedOut {
		return domain.ErrVerifyTimeout
	}
	return nil
}

// Run drives the automatic polling loop and blocks until a terminal poller
// state is reached or ctx is cancelled. Cancellation stops all timers; the
// state at that moment is returned.
func (p *VerifyPoller) Run(ctx context.Context) PollState {
	for {
		p.mu.Lock()
		if p.state == PollStateCompleted || p.state == PollStateFailed {
			st := p.state
			p.mu.Unlock()
			return st
		}
		p.polls++
		n := p.polls
		p.mu.Unlock()

		st := p.poll(ctx)
		if st == PollStateCompleted || st == PollStateFailed {
			metrics.IncPollerOutcome(string(st))
			return st
		}
		if n >= maxPolls {
			p.setState(PollStateTimedOut)
			metrics.IncPollerOutcome(string(PollStateTimedOut))
			return PollStateTimedOut
		}

		select {
		case <-ctx.Done():
			return p.State()
		case <-p.clock.After(pollInterval):
		}
	}
}

// Refetch issues one manual poll. It may be called at any time, including
// after timeout, and never touches the automatic poll counter.
func (p *VerifyPoller) Refetch(ctx context.Context) PollState {
	return p.poll(ctx)
}

// poll performs a single status request and folds the result into state.
// Transport errors leave the state as is; the budget still counts the
// attempt.
func (p *VerifyPoller) poll(ctx context.Context) PollState {
	status, err := p.status(ctx)
	if err != nil {
		return p.State()
	}
	switch status {
	case model.PaymentStatusCompleted:
		p.setState(PollStateCompleted)
	case model.PaymentStatusFailed:
		p.setState(PollStateFailed)
	default:
		p.setStateIfNotTerminal(PollStatePending)
	}
	return p.State()
}

func (p *VerifyPoller) setState(st PollState) {
	p.mu.Lock()
	p.state = st
	p.mu.Unlock()
}

func (p *VerifyPoller) setStateIfNotTerminal(st PollState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case PollStateCompleted, PollStateFailed, PollStateTimedOut:
		return
	}
	p.state = st
}
