// Package handler exposes the box claim registry over HTTP.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartbox-platform/backend/internal/ownership/domain"
	"smartbox-platform/backend/internal/ownership/service"
	"smartbox-platform/backend/internal/server/middleware"
)

// OwnershipHandler serves the /api/boxes endpoints. All routes require a
// verified identity.
type OwnershipHandler struct {
	registry *service.Registry
}

// NewOwnershipHandler returns a handler backed by registry.
func NewOwnershipHandler(registry *service.Registry) *OwnershipHandler {
	return &OwnershipHandler{registry: registry}
}

type claimRequest struct {
	BoxID string `json:"box_id"`
	Label string `json:"label"`
}

type ownershipView struct {
	ID        string `json:"id"`
	BoxID     string `json:"box_id"`
	Label     string `json:"label"`
	CreatedAt string `json:"created_at"`
}

func viewOf(o *domain.BoxOwnership) ownershipView {
	return ownershipView{
		ID:        o.ID,
		BoxID:     o.BoxID,
		Label:     o.Label,
		CreatedAt: o.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Claim handles POST /api/boxes/register. A box can be claimed exactly once;
// any later attempt is a 409 regardless of who claims.
func (h *OwnershipHandler) Claim(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	var req claimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ownership, err := h.registry.Claim(c.Request.Context(), id.AccountID, req.BoxID, req.Label)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, viewOf(ownership))
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": "box already claimed"})
	default:
		log.Printf("ownership: claim of %q by %s failed: %v", req.BoxID, id.AccountID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// List handles GET /api/boxes, returning the caller's claims.
func (h *OwnershipHandler) List(c *gin.Context) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	claims, err := h.registry.ListByAccount(c.Request.Context(), id.AccountID)
	if err != nil {
		log.Printf("ownership: list for %s failed: %v", id.AccountID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	out := make([]ownershipView, 0, len(claims))
	for _, o := range claims {
		out = append(out, viewOf(o))
	}
	c.JSON(http.StatusOK, out)
}
