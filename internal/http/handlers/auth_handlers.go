package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/you/staysvc/domain"
	"github.com/you/staysvc/internal/http/middleware"
)

// AuthHandlers handles registration, login and profile requests
type AuthHandlers struct {
	identitySvc domain.IdentityService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(identitySvc domain.IdentityService) *AuthHandlers {
	return &AuthHandlers{identitySvc: identitySvc}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles account registration
func (h *AuthHandlers) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.identitySvc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data": gin.H{
			"token": result.Token,
			"user":  result.Account.View(),
		},
	})
}

// Login handles credential verification
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.identitySvc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"token": result.Token,
			"user":  result.Account.View(),
		},
	})
}

// Me returns the profile of the authenticated account
func (h *AuthHandlers) Me(c *gin.Context) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, domain.ErrUnauthenticated)
		return
	}

	account, err := h.identitySvc.Resolve(c.Request.Context(), identity.AccountID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":         account.ID,
			"name":       account.Name,
			"email":      account.Email,
			"is_host":    account.IsHost,
			"created_at": account.CreatedAt,
		},
	})
}
