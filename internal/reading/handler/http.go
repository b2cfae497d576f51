// Package handler exposes telemetry queries over HTTP: the public per-box
// lookup, the ownership-scoped dashboard, and the CSV export.
package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"smartbox-platform/backend/internal/reading/domain"
	"smartbox-platform/backend/internal/reading/repository"
	"smartbox-platform/backend/internal/server/middleware"
)

// defaultLimit matches the public lookup's page size when limit is omitted.
const defaultLimit = 100

// dashboardLimit is the fixed page size for the scoped dashboard feed.
const dashboardLimit = 100

// Scoper resolves the set of box ids an account may read.
type Scoper interface {
	Scope(ctx context.Context, accountID string) ([]string, error)
}

// ReadingHandler serves the /api/data, /api/dashboard, and /api/export routes.
type ReadingHandler struct {
	readings repository.Repository
	scoper   Scoper
	maxLimit int
}

// NewReadingHandler returns a handler. maxLimit caps the limit query
// parameter on the public lookup.
func NewReadingHandler(readings repository.Repository, scoper Scoper, maxLimit int) *ReadingHandler {
	if maxLimit <= 0 {
		maxLimit = 1000
	}
	return &ReadingHandler{readings: readings, scoper: scoper, maxLimit: maxLimit}
}

// readingView is the wire shape of one reading. Missing measurements render
// as null, not zero.
type readingView struct {
	ID          int64    `json:"id"`
	BoxID       string   `json:"box_id"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	RecordedAt  string   `json:"recorded_at"`
}

func viewOf(r *domain.SensorReading) readingView {
	return readingView{
		ID:          r.ID,
		BoxID:       r.BoxID,
		Temperature: r.Temperature,
		Humidity:    r.Humidity,
		Latitude:    r.Latitude,
		Longitude:   r.Longitude,
		RecordedAt:  r.RecordedAt.UTC().Format("2006-01-02T15:04:05.999999Z07:00"),
	}
}

func viewsOf(readings []*domain.SensorReading) []readingView {
	out := make([]readingView, 0, len(readings))
	for _, r := range readings {
		out = append(out, viewOf(r))
	}
	return out
}

// GetBoxData handles GET /api/data/:box_id. Public by design: box ids act as
// capability strings for read access, matching the device provisioning model.
func (h *ReadingHandler) GetBoxData(c *gin.Context) {
	boxID := c.Param("box_id")

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	readings, err := h.readings.ListByBox(c.Request.Context(), boxID, limit)
	if err != nil {
		log.Printf("reading: lookup for %s failed: %v", boxID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, viewsOf(readings))
}

// Dashboard handles GET /api/dashboard. Results are restricted to boxes the
// caller has claimed; an account with no claims sees an empty list.
func (h *ReadingHandler) Dashboard(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	scope, err := h.scoper.Scope(c.Request.Context(), id.AccountID)
	if err != nil {
		log.Printf("reading: scope for %s failed: %v", id.AccountID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	readings, err := h.readings.ListByBoxes(c.Request.Context(), scope, dashboardLimit)
	if err != nil {
		log.Printf("reading: dashboard for %s failed: %v", id.AccountID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, viewsOf(readings))
}

// Export handles GET /api/export/:box_id. The full history is streamed as CSV
// row by row, so exports of large boxes never buffer the result set.
func (h *ReadingHandler) Export(c *gin.Context) {
	boxID := c.Param("box_id")

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", boxID+"_readings.csv"))

	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{"id", "box_id", "temperature", "humidity", "latitude", "longitude", "recorded_at"}); err != nil {
		log.Printf("reading: export header for %s failed: %v", boxID, err)
		return
	}

	rows := 0
	err := h.readings.ForEachByBox(c.Request.Context(), boxID, func(r *domain.SensorReading) error {
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.BoxID,
			formatMeasurement(r.Temperature),
			formatMeasurement(r.Humidity),
			formatMeasurement(r.Latitude),
			formatMeasurement(r.Longitude),
			r.RecordedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return err
		}
		rows++
		if rows%500 == 0 {
			w.Flush()
		}
		return w.Error()
	})
	if err != nil {
		// Headers are already on the wire; all that is left is to stop.
		log.Printf("reading: export for %s aborted after %d rows: %v", boxID, rows, err)
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		log.Printf("reading: export flush for %s failed: %v", boxID, err)
	}
}

// formatMeasurement renders an optional measurement for CSV; absent values
// become empty cells.
func formatMeasurement(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
