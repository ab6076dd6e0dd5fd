package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/medichain/core"
)

// Envelope is the JSON shape of every response: success flag, payload on
// success, human-readable message on failure.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Message: message})
}

func abortError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message})
}

// respondServiceError maps service-layer sentinel errors onto HTTP statuses:
// validation 400, authentication 401, authorization 403, absence 404 and
// everything else 500. Unrecognized errors keep their message so operators
// can see what the chain reported.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrInvalidAddress):
		respondError(c, http.StatusBadRequest, "invalid ethereum address")
	case errors.Is(err, core.ErrInvalidChallenge):
		respondError(c, http.StatusUnauthorized, "invalid or expired challenge")
	case errors.Is(err, core.ErrInvalidSignature):
		respondError(c, http.StatusUnauthorized, "invalid signature")
	case errors.Is(err, core.ErrInvalidToken):
		respondError(c, http.StatusUnauthorized, "invalid token")
	case errors.Is(err, core.ErrTokenExpired):
		respondError(c, http.StatusUnauthorized, "token has expired")
	case errors.Is(err, core.ErrTokenInvalidated):
		respondError(c, http.StatusUnauthorized, "token has been invalidated")
	case errors.Is(err, core.ErrInsufficientRole):
		respondError(c, http.StatusForbidden, "insufficient role")
	case errors.Is(err, core.ErrDIDNotFound):
		respondError(c, http.StatusNotFound, "did not found")
	case errors.Is(err, core.ErrRecordNotFound):
		respondError(c, http.StatusNotFound, "record not found")
	case errors.Is(err, core.ErrConsentNotFound):
		respondError(c, http.StatusNotFound, "consent not found")
	case errors.Is(err, core.ErrDIDExists):
		respondError(c, http.StatusConflict, "did already registered")
	case errors.Is(err, core.ErrDIDDeactivated):
		respondError(c, http.StatusBadRequest, "did has been deactivated")
	case errors.Is(err, core.ErrUnknownContract):
		respondError(c, http.StatusInternalServerError, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}
