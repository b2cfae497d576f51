package repository

import (
	"context"
	"database/sql"

	"smartbox-platform/backend/internal/reading/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a reading repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const readingColumns = "id, box_id, temperature, humidity, latitude, longitude, recorded_at"

// Insert persists the reading. The database assigns the surrogate id and the
// recorded_at timestamp; both are written back to r.
func (r *PostgresRepository) Insert(ctx context.Context, reading *domain.SensorReading) error {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO sensor_readings (box_id, temperature, humidity, latitude, longitude)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, recorded_at`,
		reading.BoxID, reading.Temperature, reading.Humidity, reading.Latitude, reading.Longitude)
	return row.Scan(&reading.ID, &reading.RecordedAt)
}

// ListByBox returns readings for one box, newest first, up to limit.
func (r *PostgresRepository) ListByBox(ctx context.Context, boxID string, limit int) ([]*domain.SensorReading, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+readingColumns+` FROM sensor_readings
		 WHERE box_id = $1 ORDER BY recorded_at DESC, id DESC LIMIT $2`,
		boxID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReadings(rows)
}

// ListByBoxes returns readings whose box id is in boxIDs, newest first, up to
// limit. An empty set short-circuits to an empty result without a query.
func (r *PostgresRepository) ListByBoxes(ctx context.Context, boxIDs []string, limit int) ([]*domain.SensorReading, error) {
	if len(boxIDs) == 0 {
		return []*domain.SensorReading{}, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+readingColumns+` FROM sensor_readings
		 WHERE box_id = ANY($1) ORDER BY recorded_at DESC, id DESC LIMIT $2`,
		boxIDs, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectReadings(rows)
}

// DistinctBoxes returns every box id ever seen, sorted.
func (r *PostgresRepository) DistinctBoxes(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT DISTINCT box_id FROM sensor_readings ORDER BY box_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// ForEachByBox streams a box's full history newest first. Rows are scanned and
// handed to fn one at a time so exports never buffer the whole result set.
func (r *PostgresRepository) ForEachByBox(ctx context.Context, boxID string, fn func(*domain.SensorReading) error) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+readingColumns+` FROM sensor_readings
		 WHERE box_id = $1 ORDER BY recorded_at DESC, id DESC`,
		boxID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return err
		}
		if err := fn(reading); err != nil {
			return err
		}
	}
	return rows.Err()
}

func collectReadings(rows *sql.Rows) ([]*domain.SensorReading, error) {
	out := []*domain.SensorReading{}
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, reading)
	}
	return out, rows.Err()
}

func scanReading(rows *sql.Rows) (*domain.SensorReading, error) {
	var reading domain.SensorReading
	err := rows.Scan(&reading.ID, &reading.BoxID,
		&reading.Temperature, &reading.Humidity,
		&reading.Latitude, &reading.Longitude,
		&reading.RecordedAt)
	if err != nil {
		return nil, err
	}
	return &reading, nil
}
