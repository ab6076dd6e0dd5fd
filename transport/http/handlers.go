package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medichain/medichain/service"
)

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService *service.AuthService
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

type userPayload struct {
	Address string `json:"address"`
	DID     string `json:"did,omitempty"`
	Role    string `json:"role"`
}

type tokenPayload struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresIn    int64       `json:"expiresIn"`
	User         userPayload `json:"user"`
}

// Challenge handles challenge issuance for an address.
func (h *AuthHandlers) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "address is required")
		return
	}

	challenge, err := h.authService.CreateChallenge(c.Request.Context(), req.Address)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"challenge": challenge.Nonce,
		"expiresAt": challenge.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Authenticate handles the signed-challenge login.
func (h *AuthHandlers) Authenticate(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "address and signature are required")
		return
	}

	accessToken, refreshToken, session, err := h.authService.Authenticate(c.Request.Context(), req.Address, req.Signature)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, tokenPayload{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.authService.AccessTTL().Seconds()),
		User: userPayload{
			Address: session.Address,
			DID:     session.DID,
			Role:    string(session.Role),
		},
	})
}

// Verify decodes and validates an access token.
func (h *AuthHandlers) Verify(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "token is required")
		return
	}

	session, err := h.authService.ValidateAccessToken(c.Request.Context(), req.Token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, userPayload{
		Address: session.Address,
		DID:     session.DID,
		Role:    string(session.Role),
	})
}

// Refresh rotates a refresh token.
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "refreshToken is required")
		return
	}

	accessToken, refreshToken, session, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, tokenPayload{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(h.authService.AccessTTL().Seconds()),
		User: userPayload{
			Address: session.Address,
			DID:     session.DID,
			Role:    string(session.Role),
		},
	})
}

// Logout revokes a refresh token. Requires a valid access token; the
// middleware runs before this handler.
func (h *AuthHandlers) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "refreshToken is required")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user.
func (h *AuthHandlers) Me(c *gin.Context) {
	session := sessionFrom(c)
	if session == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	respondOK(c, http.StatusOK, userPayload{
		Address: session.Address,
		DID:     session.DID,
		Role:    string(session.Role),
	})
}
