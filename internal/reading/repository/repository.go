package repository

import (
	"context"

	"smartbox-platform/backend/internal/reading/domain"
)

// Repository defines persistence for sensor readings. The ingest pipeline only
// inserts; the query layer only reads.
type Repository interface {
	// Insert persists the reading and sets its ID and server-assigned
	// RecordedAt on success.
	Insert(ctx context.Context, r *domain.SensorReading) error
	// ListByBox returns readings for one box, newest first, up to limit.
	ListByBox(ctx context.Context, boxID string, limit int) ([]*domain.SensorReading, error)
	// ListByBoxes returns readings whose box id is in boxIDs, newest first,
	// up to limit. An empty boxIDs set returns an empty result.
	ListByBoxes(ctx context.Context, boxIDs []string, limit int) ([]*domain.SensorReading, error)
	// DistinctBoxes returns every box id ever seen, sorted.
	DistinctBoxes(ctx context.Context) ([]string, error)
	// ForEachByBox streams a box's full history newest first, invoking fn per
	// row without buffering the result set. fn returning an error stops the
	// scan and propagates the error.
	ForEachByBox(ctx context.Context, boxID string, fn func(*domain.SensorReading) error) error
}
