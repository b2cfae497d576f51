package repository

import (
	"context"

	"smartbox-platform/backend/internal/account/domain"
)

// Repository defines persistence for accounts and their business profiles.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	// CreateWithProfile persists the account and its profile in one
	// transaction; either both rows exist afterwards or neither does.
	// profile may be nil when no business fields were supplied.
	CreateWithProfile(ctx context.Context, a *domain.Account, profile *domain.BusinessProfile) error
	// SetApproved flips the approval flag. Approving an already-approved
	// account is a no-op success.
	SetApproved(ctx context.Context, id string, approved bool) error
	// ListPending returns unapproved accounts joined with their business
	// profiles, oldest registration first.
	ListPending(ctx context.Context) ([]*domain.PendingAccount, error)
}
