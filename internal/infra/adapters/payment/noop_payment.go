package payment

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"academy-payments/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for dev mode and tests.
// Sessions stay pending until a test approves or declines them.
type NoopPaymentGateway struct {
	mu       sync.Mutex
	sessions map[string]adapter.GatewayStatus
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{sessions: make(map[string]adapter.GatewayStatus)}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) RequestPayment(ctx context.Context, req adapter.PaymentRequest) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	ref := ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
	g.sessions[ref] = adapter.GatewayStatusPending
	redirect := ""
	if req.HostedPage {
		redirect = "https://pay.example.test/hpp/" + ref
	}
	return ref, redirect, nil
}

func (g *NoopPaymentGateway) QueryPayment(ctx context.Context, referenceID string) (adapter.GatewayStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.sessions[referenceID]
	if !ok {
		return "", fmt.Errorf("noop: unknown reference %s", referenceID)
	}
	return st, nil
}

// Resolve moves a session to a terminal state; used by dev tooling and tests.
func (g *NoopPaymentGateway) Resolve(referenceID string, status adapter.GatewayStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions[referenceID] = status
}
