package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/service"
)

// RecordHandlers contains HTTP handlers for data-registry endpoints
type RecordHandlers struct {
	recordService *service.RecordService
}

// NewRecordHandlers creates new record handlers
func NewRecordHandlers(recordService *service.RecordService) *RecordHandlers {
	return &RecordHandlers{recordService: recordService}
}

// Register anchors a record hash. Producer or admin role; producers may
// only register under their own DID.
func (h *RecordHandlers) Register(c *gin.Context) {
	var req struct {
		DID          string `json:"did" binding:"required"`
		ResourceType string `json:"resourceType" binding:"required"`
		Payload      any    `json:"payload" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "did, resourceType and payload are required")
		return
	}

	session := sessionFrom(c)
	if session == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	if session.Role != core.RoleAdmin && session.DID != req.DID {
		respondError(c, http.StatusForbidden, "cannot register records for another did")
		return
	}

	record, err := h.recordService.Register(c.Request.Context(), req.DID, req.ResourceType, req.Payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, record)
}

// Get reads an anchored record by ID.
func (h *RecordHandlers) Get(c *gin.Context) {
	record, err := h.recordService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, record)
}

// Verify checks a payload against the anchored hash of a record.
func (h *RecordHandlers) Verify(c *gin.Context) {
	var req struct {
		Payload any `json:"payload" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "payload is required")
		return
	}

	valid, err := h.recordService.Verify(c.Request.Context(), c.Param("id"), req.Payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"valid": valid})
}
