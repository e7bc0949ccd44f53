package repository

import (
	"context"

	"elearning-platform/internal/domain/model"
)

// PromotionRepository is the port for promotion codes.
type PromotionRepository interface {
	Save(ctx context.Context, tx Tx, p *model.PromotionCode) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.PromotionCode, error)
	FindByCode(ctx context.Context, tx Tx, code string) (*model.PromotionCode, error)
	List(ctx context.Context, offset, limit int) ([]*model.PromotionCode, error)

	// IncrementUsageIfAvailable atomically bumps current_uses when the
	// cap allows it. Returns false when the code is exhausted. This is
	// the compare-and-increment the completion flow relies on; a
	// read-then-write sequence is not acceptable here.
	IncrementUsageIfAvailable(ctx context.Context, tx Tx, id string) (bool, error)
}
