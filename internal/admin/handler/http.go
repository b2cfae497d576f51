// Package handler exposes the administrative surface: the approval queue,
// account approval, and the fleet device inventory. Every route is gated by
// the authorization policy on top of bearer auth.
package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	accountdomain "smartbox-platform/backend/internal/account/domain"
	"smartbox-platform/backend/internal/account/service"
	"smartbox-platform/backend/internal/authz"
	"smartbox-platform/backend/internal/events"
	"smartbox-platform/backend/internal/server/middleware"
)

// BoxInventory lists every box id the platform has ever stored data for.
type BoxInventory interface {
	DistinctBoxes(ctx context.Context) ([]string, error)
}

// AdminHandler serves the /api/admin endpoints.
type AdminHandler struct {
	auth    *service.AuthService
	boxes   BoxInventory
	policy  authz.Evaluator
	emitter events.EventEmitter
}

// NewAdminHandler returns a handler. emitter may be nil to disable event
// publishing.
func NewAdminHandler(auth *service.AuthService, boxes BoxInventory, policy authz.Evaluator, emitter events.EventEmitter) *AdminHandler {
	return &AdminHandler{auth: auth, boxes: boxes, policy: policy, emitter: emitter}
}

// authorize evaluates the policy for the caller and writes the response on
// denial. Returns the identity and true when the request may proceed.
func (h *AdminHandler) authorize(c *gin.Context, action string) (middleware.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return middleware.Identity{}, false
	}
	allowed, err := h.policy.Allow(c.Request.Context(), authz.Input{Role: id.Role, Action: action})
	if err != nil {
		log.Printf("admin: policy evaluation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return middleware.Identity{}, false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return middleware.Identity{}, false
	}
	return id, true
}

type pendingView struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	CreatedAt    string `json:"created_at"`
	BusinessName string `json:"business_name,omitempty"`
	BusinessType string `json:"business_type,omitempty"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

func pendingViewOf(p *accountdomain.PendingAccount) pendingView {
	v := pendingView{
		ID:        p.Account.ID,
		Username:  p.Account.Username,
		Email:     p.Account.Email,
		CreatedAt: p.Account.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	if p.Profile != nil {
		v.BusinessName = p.Profile.BusinessName
		v.BusinessType = p.Profile.BusinessType
		v.Address = p.Profile.Address
		v.Phone = p.Profile.Phone
	}
	return v
}

// PendingUsers handles GET /api/admin/users: the approval queue with business
// profiles attached.
func (h *AdminHandler) PendingUsers(c *gin.Context) {
	if _, ok := h.authorize(c, "admin:list_pending"); !ok {
		return
	}

	pending, err := h.auth.PendingAccounts(c.Request.Context())
	if err != nil {
		log.Printf("admin: pending accounts lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]pendingView, 0, len(pending))
	for _, p := range pending {
		out = append(out, pendingViewOf(p))
	}
	c.JSON(http.StatusOK, out)
}

// Approve handles POST /api/admin/approve/:id. Approval is idempotent; the
// second approval of the same account is a 200, not an error.
func (h *AdminHandler) Approve(c *gin.Context) {
	id, ok := h.authorize(c, "admin:approve")
	if !ok {
		return
	}
	accountID := c.Param("id")

	err := h.auth.Approve(c.Request.Context(), accountID)
	switch {
	case err == nil:
		events.EmitAsync(h.emitter, c.Request.Context(), &events.Event{
			AccountID: accountID,
			EventType: events.TypeAccountApproved,
			CreatedAt: time.Now().UTC(),
		})
		log.Printf("admin: %s approved account %s", id.Username, accountID)
		c.JSON(http.StatusOK, gin.H{"status": "approved"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
	default:
		log.Printf("admin: approve %s failed: %v", accountID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Devices handles GET /api/admin/devices: every box id ever seen by ingest,
// claimed or not.
func (h *AdminHandler) Devices(c *gin.Context) {
	if _, ok := h.authorize(c, "admin:list_devices"); !ok {
		return
	}

	boxes, err := h.boxes.DistinctBoxes(c.Request.Context())
	if err != nil {
		log.Printf("admin: device inventory failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if boxes == nil {
		boxes = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"devices": boxes})
}
