package repository

import (
	"context"
	"time"

	"elearning-platform/internal/domain/model"
)

// PaymentRepository is the port for the payment ledger.
type PaymentRepository interface {
	Save(ctx context.Context, tx Tx, p *model.Payment) error
	// FindByID row-locks the payment when called inside a transaction.
	FindByID(ctx context.Context, tx Tx, id string) (*model.Payment, error)
	FindByStripeSession(ctx context.Context, tx Tx, sessionID string) (*model.Payment, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*model.Payment, error)
	ListPendingOlderThan(ctx context.Context, tx Tx, olderThan time.Time, limit int) ([]*model.Payment, error)

	// UpdateStatusIfCurrent flips the status only when the row still
	// holds the expected current status, enforcing the forward-only
	// machine at the storage layer. Returns false when the guard failed.
	UpdateStatusIfCurrent(ctx context.Context, tx Tx, id string, current, next model.PaymentStatus, gatewayRef *string, paidAt *time.Time) (bool, error)
}
