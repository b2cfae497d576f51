package repository

import (
	"context"
	"database/sql"
	"errors"

	"smartbox-platform/backend/internal/ownership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an ownership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const ownershipColumns = "id, account_id, box_id, label, created_at"

// GetByBoxID returns the claim for boxID, or nil if the box is unclaimed.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByBoxID(ctx context.Context, boxID string) (*domain.BoxOwnership, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+ownershipColumns+" FROM box_ownerships WHERE box_id = $1", boxID)
	var (
		o     domain.BoxOwnership
		label sql.NullString
	)
	err := row.Scan(&o.ID, &o.AccountID, &o.BoxID, &label, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	o.Label = label.String
	return &o, nil
}

// Create inserts the claim. A duplicate box id surfaces as the database's
// unique-violation error; callers map it to a conflict.
func (r *PostgresRepository) Create(ctx context.Context, o *domain.BoxOwnership) error {
	label := sql.NullString{String: o.Label, Valid: o.Label != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO box_ownerships (id, account_id, box_id, label, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.AccountID, o.BoxID, label, o.CreatedAt)
	return err
}

// ListByAccount returns the account's claims, oldest first.
func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.BoxOwnership, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+ownershipColumns+` FROM box_ownerships
		 WHERE account_id = $1 ORDER BY created_at ASC`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.BoxOwnership{}
	for rows.Next() {
		var (
			o     domain.BoxOwnership
			label sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.AccountID, &o.BoxID, &label, &o.CreatedAt); err != nil {
			return nil, err
		}
		o.Label = label.String
		out = append(out, &o)
	}
	return out, rows.Err()
}

// BoxIDsByAccount returns the box ids claimed by the account.
func (r *PostgresRepository) BoxIDsByAccount(ctx context.Context, accountID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT box_id FROM box_ownerships WHERE account_id = $1 ORDER BY box_id", accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
