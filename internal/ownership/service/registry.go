package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartbox-platform/backend/internal/db"
	"smartbox-platform/backend/internal/ownership/domain"
)

// Sentinel errors for the ownership registry; handlers map them to HTTP statuses.
var (
	// ErrAlreadyClaimed is returned when the box has an owner, regardless of
	// who the caller is. There is no transfer or re-claim operation.
	ErrAlreadyClaimed = errors.New("box already claimed")
	// ErrValidation wraps request-shape failures.
	ErrValidation = errors.New("validation failed")
)

// OwnershipRepo is the minimal ownership repository needed by the registry.
type OwnershipRepo interface {
	GetByBoxID(ctx context.Context, boxID string) (*domain.BoxOwnership, error)
	Create(ctx context.Context, o *domain.BoxOwnership) error
	ListByAccount(ctx context.Context, accountID string) ([]*domain.BoxOwnership, error)
	BoxIDsByAccount(ctx context.Context, accountID string) ([]string, error)
}

// Registry implements the box claim system: a one-time, race-free association
// of a box id with exactly one account.
type Registry struct {
	repo OwnershipRepo
}

// NewRegistry returns a Registry with the given repository.
func NewRegistry(repo OwnershipRepo) *Registry {
	return &Registry{repo: repo}
}

// Claim associates boxID with accountID. The pre-check is advisory; the
// storage unique constraint decides races, so at most one of two simultaneous
// claimants succeeds.
func (r *Registry) Claim(ctx context.Context, accountID, boxID, label string) (*domain.BoxOwnership, error) {
	boxID = strings.TrimSpace(boxID)
	if boxID == "" {
		return nil, fmt.Errorf("%w: box id is required", ErrValidation)
	}

	existing, err := r.repo.GetByBoxID(ctx, boxID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyClaimed
	}

	ownership := &domain.BoxOwnership{
		ID:        uuid.New().String(),
		AccountID: accountID,
		BoxID:     boxID,
		Label:     strings.TrimSpace(label),
		CreatedAt: time.Now().UTC(),
	}
	if err := ownership.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := r.repo.Create(ctx, ownership); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrAlreadyClaimed
		}
		return nil, err
	}
	return ownership, nil
}

// Scope returns the set of box ids the account may read. An account with no
// claims has an empty scope, which is not an error.
func (r *Registry) Scope(ctx context.Context, accountID string) ([]string, error) {
	return r.repo.BoxIDsByAccount(ctx, accountID)
}

// ListByAccount returns the account's claims for display.
func (r *Registry) ListByAccount(ctx context.Context, accountID string) ([]*domain.BoxOwnership, error) {
	return r.repo.ListByAccount(ctx, accountID)
}
