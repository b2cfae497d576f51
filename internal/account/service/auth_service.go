package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"smartbox-platform/backend/internal/account/domain"
	"smartbox-platform/backend/internal/db"
	"smartbox-platform/backend/internal/security"
)

// Sentinel errors for the auth service; handlers map them to HTTP statuses.
var (
	// ErrValidation wraps request-shape failures (missing/short fields). No state change occurred.
	ErrValidation = errors.New("validation failed")
	// ErrUsernameTaken is the duplicate-username conflict, distinct from generic failure.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both unknown username and wrong password,
	// deliberately indistinguishable to avoid username enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrPendingApproval means the credentials were correct but the account has
	// not been approved by an administrator yet.
	ErrPendingApproval = errors.New("account pending approval")
)

const minPasswordLen = 6

// Registration is the input to Register. Business fields are optional.
type Registration struct {
	Username     string
	Password     string
	Email        string
	BusinessName string
	BusinessType string
	Address      string
	Phone        string
}

// LoginResult holds the issued session token and the account it belongs to.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Account   *domain.Account
}

// AccountRepo is the minimal account repository needed by the auth service.
type AccountRepo interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	CreateWithProfile(ctx context.Context, a *domain.Account, profile *domain.BusinessProfile) error
	SetApproved(ctx context.Context, id string, approved bool) error
	ListPending(ctx context.Context) ([]*domain.PendingAccount, error)
}

// AuthService implements registration, login, the admin approval workflow, and
// the idempotent super_admin bootstrap.
type AuthService struct {
	repo   AccountRepo
	hasher *security.Hasher
	tokens *security.TokenProvider
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(repo AccountRepo, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{repo: repo, hasher: hasher, tokens: tokens}
}

// Register creates an unapproved admin account and its business profile in one
// unit of work. Returns the created account (without tokens; the caller must
// wait for approval, then log in).
func (s *AuthService) Register(ctx context.Context, reg Registration) (*domain.Account, error) {
	reg.Username = strings.TrimSpace(reg.Username)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if reg.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if len(reg.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrValidation, minPasswordLen)
	}
	if reg.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}

	// Advisory pre-check; the unique constraint on username is authoritative
	// under concurrent registrations.
	existing, err := s.repo.GetByUsername(ctx, reg.Username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := s.hasher.Hash([]byte(reg.Password))
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:           uuid.New().String(),
		Username:     reg.Username,
		Email:        reg.Email,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
		Approved:     false,
		CreatedAt:    now,
	}
	if err := account.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var profile *domain.BusinessProfile
	if reg.BusinessName != "" || reg.BusinessType != "" || reg.Address != "" || reg.Phone != "" {
		profile = &domain.BusinessProfile{
			ID:           uuid.New().String(),
			AccountID:    account.ID,
			BusinessName: strings.TrimSpace(reg.BusinessName),
			BusinessType: strings.TrimSpace(reg.BusinessType),
			Address:      strings.TrimSpace(reg.Address),
			Phone:        strings.TrimSpace(reg.Phone),
			CreatedAt:    now,
		}
	}

	if err := s.repo.CreateWithProfile(ctx, account, profile); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return account, nil
}

// Login verifies credentials and issues a session token. Unknown username and
// wrong password both return ErrInvalidCredentials; correct credentials on an
// unapproved account return ErrPendingApproval and never a token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(account.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.Approved {
		return nil, ErrPendingApproval
	}
	token, expiresAt, err := s.tokens.Issue(account.ID, account.Username, string(account.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, Account: account}, nil
}

// GetByID returns the account for id, or nil if not found.
func (s *AuthService) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// PendingAccounts returns the admin approval queue.
func (s *AuthService) PendingAccounts(ctx context.Context) ([]*domain.PendingAccount, error) {
	return s.repo.ListPending(ctx)
}

// Approve flips an account's approval flag to true. Approving an
// already-approved account is a no-op success.
func (s *AuthService) Approve(ctx context.Context, accountID string) error {
	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account not found", ErrValidation)
	}
	if account.Approved {
		return nil
	}
	return s.repo.SetApproved(ctx, accountID, true)
}

// Bootstrap seeds the distinguished super_admin account once at process
// initialization. Guarded by an exists-check: a second run is a no-op.
func (s *AuthService) Bootstrap(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		log.Println("bootstrap: superadmin credentials not configured, skipping")
		return nil
	}
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hashed, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return err
	}
	account := &domain.Account{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hashed,
		Role:         domain.RoleSuperAdmin,
		Approved:     true,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.CreateWithProfile(ctx, account, nil); err != nil {
		// A concurrent bootstrap won the race; that is the desired end state.
		if db.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	log.Printf("bootstrap: created super_admin account %q", username)
	return nil
}
