// Package handler exposes registration and login over HTTP.
package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartbox-platform/backend/internal/account/domain"
	"smartbox-platform/backend/internal/account/service"
)

// AuthHandler serves the /api/auth endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler returns an AuthHandler backed by auth.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	BusinessName string `json:"business_name"`
	BusinessType string `json:"business_type"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userView is the account summary returned to clients. The password hash
// never leaves the service layer.
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
}

func viewOf(a *domain.Account) userView {
	return userView{
		ID:       a.ID,
		Username: a.Username,
		Email:    a.Email,
		Role:     string(a.Role),
		Approved: a.Approved,
	}
}

// Register handles POST /api/auth/register. New accounts start unapproved and
// cannot log in until an administrator approves them.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	account, err := h.auth.Register(c.Request.Context(), service.Registration{
		Username:     req.Username,
		Password:     req.Password,
		Email:        req.Email,
		BusinessName: req.BusinessName,
		BusinessType: req.BusinessType,
		Address:      req.Address,
		Phone:        req.Phone,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{
			"message": "registration received, awaiting approval",
			"user":    viewOf(account),
		})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
	default:
		log.Printf("auth: register failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Login handles POST /api/auth/login. Unknown username and wrong password get
// the same 401; a correct password on an unapproved account gets 403.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{
			"token":      result.Token,
			"expires_at": result.ExpiresAt,
			"user":       viewOf(result.Account),
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrPendingApproval):
		c.JSON(http.StatusForbidden, gin.H{"error": "account pending approval"})
	default:
		log.Printf("auth: login failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
