package adapter

import "context"

// PaymentGateway abstracts the external payment provider. The platform
// never interprets gateway identifiers; it stores them for correlation
// and idempotent lookup only.
type PaymentGateway interface {
	Name() string
	// CreateCheckout registers an intent for the given amount and returns
	// the provider session id and a redirect URL.
	CreateCheckout(ctx context.Context, amountCents int64, currency, description string) (sessionID, redirectURL string, err error)
}
