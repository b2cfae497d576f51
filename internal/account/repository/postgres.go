package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartbox-platform/backend/internal/account/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an account repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const accountColumns = "id, username, email, password_hash, role, approved, created_at"

// GetByID returns the account for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id = $1", id)
	return scanAccount(row)
}

// GetByUsername returns the account with the given username, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE username = $1", username)
	return scanAccount(row)
}

// CreateWithProfile persists the account and, when non-nil, its business
// profile in a single transaction. A duplicate username surfaces as the
// database's unique-violation error; callers map it to a conflict.
func (r *PostgresRepository) CreateWithProfile(ctx context.Context, a *domain.Account, profile *domain.BusinessProfile) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	email := sql.NullString{String: a.Email, Valid: a.Email != ""}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO accounts (id, username, email, password_hash, role, approved, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Username, email, a.PasswordHash, string(a.Role), a.Approved, a.CreatedAt)
	if err != nil {
		return err
	}

	if profile != nil {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO business_profiles (id, account_id, business_name, business_type, address, phone, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			profile.ID, profile.AccountID,
			nullString(profile.BusinessName), nullString(profile.BusinessType),
			nullString(profile.Address), nullString(profile.Phone),
			profile.CreatedAt)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SetApproved sets the approval flag for the account with the given id.
// Updating an account already in the target state is a no-op success; a
// missing account is reported as an error.
func (r *PostgresRepository) SetApproved(ctx context.Context, id string, approved bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET approved = $2 WHERE id = $1", id, approved)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("account %s not found", id)
	}
	return nil
}

// ListPending returns unapproved accounts with their business profiles,
// oldest registration first.
func (r *PostgresRepository) ListPending(ctx context.Context) ([]*domain.PendingAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.username, a.email, a.password_hash, a.role, a.approved, a.created_at,
		        p.id, p.business_name, p.business_type, p.address, p.phone, p.created_at
		 FROM accounts a
		 LEFT JOIN business_profiles p ON p.account_id = a.id
		 WHERE a.approved = FALSE
		 ORDER BY a.created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.PendingAccount
	for rows.Next() {
		var (
			a         domain.Account
			email     sql.NullString
			role      string
			profileID sql.NullString
			bName     sql.NullString
			bType     sql.NullString
			addr      sql.NullString
			phone     sql.NullString
			pCreated  sql.NullTime
		)
		if err := rows.Scan(&a.ID, &a.Username, &email, &a.PasswordHash, &role, &a.Approved, &a.CreatedAt,
			&profileID, &bName, &bType, &addr, &phone, &pCreated); err != nil {
			return nil, err
		}
		a.Email = email.String
		a.Role = domain.Role(role)
		pending := &domain.PendingAccount{Account: a}
		if profileID.Valid {
			pending.Profile = &domain.BusinessProfile{
				ID:           profileID.String,
				AccountID:    a.ID,
				BusinessName: bName.String,
				BusinessType: bType.String,
				Address:      addr.String,
				Phone:        phone.String,
				CreatedAt:    pCreated.Time,
			}
		}
		out = append(out, pending)
	}
	return out, rows.Err()
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var (
		a     domain.Account
		email sql.NullString
		role  string
	)
	err := row.Scan(&a.ID, &a.Username, &email, &a.PasswordHash, &role, &a.Approved, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.Email = email.String
	a.Role = domain.Role(role)
	return &a, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
