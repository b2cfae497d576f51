package repository

import (
	"context"

	"smartbox-platform/backend/internal/ownership/domain"
)

// Repository defines persistence for the box claim registry.
type Repository interface {
	GetByBoxID(ctx context.Context, boxID string) (*domain.BoxOwnership, error)
	// Create inserts a claim. The unique constraint on box_id makes
	// concurrent claims on the same box resolve to one success; the loser
	// sees a unique-violation error.
	Create(ctx context.Context, o *domain.BoxOwnership) error
	ListByAccount(ctx context.Context, accountID string) ([]*domain.BoxOwnership, error)
	// BoxIDsByAccount returns the device scope for an account. Zero claims
	// yield an empty slice, not an error.
	BoxIDsByAccount(ctx context.Context, accountID string) ([]string, error)
}
