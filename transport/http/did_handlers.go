package http

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medichain/medichain/service"
)

// DIDHandlers contains HTTP handlers for DID endpoints
type DIDHandlers struct {
	didService *service.DIDService
}

// NewDIDHandlers creates new DID handlers
func NewDIDHandlers(didService *service.DIDService) *DIDHandlers {
	return &DIDHandlers{didService: didService}
}

// Create registers the DID for an address. 201 on first registration, 200
// with the existing document when the DID is already registered.
func (h *DIDHandlers) Create(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "address is required")
		return
	}

	didStr, doc, created, err := h.didService.Create(c.Request.Context(), req.Address)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}

	respondOK(c, status, gin.H{
		"did":         didStr,
		"didDocument": doc,
	})
}

// Resolve reads a DID document. A registry "not found" is a 404 carrying
// the resolution metadata; transport errors are 500s.
func (h *DIDHandlers) Resolve(c *gin.Context) {
	var req struct {
		DID string `json:"did" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "did is required")
		return
	}

	result, err := h.didService.Resolve(c.Request.Context(), req.DID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if result.Metadata.Error != "" {
		c.JSON(http.StatusNotFound, Envelope{
			Success: false,
			Data:    result,
			Message: "did resolution failed: " + result.Metadata.Error,
		})
		return
	}

	respondOK(c, http.StatusOK, result)
}

// Update replaces a DID document. Admin only; the role gate runs before
// this handler.
func (h *DIDHandlers) Update(c *gin.Context) {
	var req struct {
		DID         string          `json:"did" binding:"required"`
		DIDDocument json.RawMessage `json:"didDocument" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "did and didDocument are required")
		return
	}

	if err := h.didService.Update(c.Request.Context(), req.DID, req.DIDDocument); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"did": req.DID})
}

// Deactivate marks a DID as deactivated. Admin only.
func (h *DIDHandlers) Deactivate(c *gin.Context) {
	var req struct {
		DID string `json:"did" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "did is required")
		return
	}

	if err := h.didService.Deactivate(c.Request.Context(), req.DID); err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"did": req.DID, "deactivated": true})
}
