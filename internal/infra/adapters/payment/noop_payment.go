package payment

import (
	"context"
	"fmt"
	"sync"

	"elearning-platform/internal/domain/ports/adapter"
)

var _ adapter.PaymentGateway = (*NoopPaymentGateway)(nil)

// NoopPaymentGateway is a simple in-memory gateway for tests and local
// development without a Stripe account.
type NoopPaymentGateway struct {
	mu      sync.Mutex
	seq     int64
	intents map[string]int64 // session id -> amount in cents
}

func NewNoopPaymentGateway() *NoopPaymentGateway {
	return &NoopPaymentGateway{intents: make(map[string]int64)}
}

func (g *NoopPaymentGateway) Name() string { return "noop" }

func (g *NoopPaymentGateway) CreateCheckout(ctx context.Context, amountCents int64, currency, description string) (string, string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	sessionID := fmt.Sprintf("noop-%d", g.seq)
	g.intents[sessionID] = amountCents
	return sessionID, "https://example.test/pay/" + sessionID, nil
}

// Amount reports the amount a session was opened for; tests use it to
// assert the discounted total reached the provider.
func (g *NoopPaymentGateway) Amount(sessionID string) (int64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	amt, ok := g.intents[sessionID]
	return amt, ok
}
