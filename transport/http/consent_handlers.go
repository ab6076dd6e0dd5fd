package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/service"
)

// ConsentHandlers contains HTTP handlers for consent endpoints
type ConsentHandlers struct {
	consentService *service.ConsentService
}

// NewConsentHandlers creates new consent handlers
func NewConsentHandlers(consentService *service.ConsentService) *ConsentHandlers {
	return &ConsentHandlers{consentService: consentService}
}

// Grant records a sharing grant. Only the producer itself or an admin may
// grant on a producer DID's behalf.
func (h *ConsentHandlers) Grant(c *gin.Context) {
	var req struct {
		ProducerDID string `json:"producerDid" binding:"required"`
		ConsumerDID string `json:"consumerDid" binding:"required"`
		ExpiresAt   string `json:"expiresAt"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "producerDid and consumerDid are required")
		return
	}

	if !h.mayActFor(c, req.ProducerDID) {
		return
	}

	var expiresAt time.Time
	if req.ExpiresAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			respondError(c, http.StatusBadRequest, "expiresAt must be RFC 3339")
			return
		}
		expiresAt = parsed
	}

	if err := h.consentService.Grant(c.Request.Context(), req.ProducerDID, req.ConsumerDID, expiresAt); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, gin.H{
		"producerDid": req.ProducerDID,
		"consumerDid": req.ConsumerDID,
		"granted":     true,
	})
}

// Revoke withdraws a sharing grant.
func (h *ConsentHandlers) Revoke(c *gin.Context) {
	var req struct {
		ProducerDID string `json:"producerDid" binding:"required"`
		ConsumerDID string `json:"consumerDid" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "producerDid and consumerDid are required")
		return
	}

	if !h.mayActFor(c, req.ProducerDID) {
		return
	}

	if err := h.consentService.Revoke(c.Request.Context(), req.ProducerDID, req.ConsumerDID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"producerDid": req.ProducerDID,
		"consumerDid": req.ConsumerDID,
		"granted":     false,
	})
}

// Check reads the current grant between two DIDs.
func (h *ConsentHandlers) Check(c *gin.Context) {
	producer := c.Query("producer")
	consumer := c.Query("consumer")
	if producer == "" || consumer == "" {
		respondError(c, http.StatusBadRequest, "producer and consumer query parameters are required")
		return
	}

	consent, err := h.consentService.Check(c.Request.Context(), producer, consumer)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, consent)
}

func (h *ConsentHandlers) mayActFor(c *gin.Context, producerDID string) bool {
	session := sessionFrom(c)
	if session == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if session.Role != core.RoleAdmin && session.DID != producerDID {
		respondError(c, http.StatusForbidden, "cannot manage consent for another did")
		return false
	}
	return true
}
