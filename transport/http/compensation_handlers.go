package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/service"
)

// CompensationHandlers contains HTTP handlers for compensation endpoints
type CompensationHandlers struct {
	compensationService *service.CompensationService
}

// NewCompensationHandlers creates new compensation handlers
func NewCompensationHandlers(compensationService *service.CompensationService) *CompensationHandlers {
	return &CompensationHandlers{compensationService: compensationService}
}

// Balance returns the compensation balance for an address. Callers may only
// read their own balance unless they hold the admin role.
func (h *CompensationHandlers) Balance(c *gin.Context) {
	address := c.Param("address")

	if !h.mayActFor(c, address) {
		return
	}

	balance, err := h.compensationService.Balance(c.Request.Context(), address)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, balance)
}

// Withdraw pays out a compensation balance.
func (h *CompensationHandlers) Withdraw(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
		Amount  string `json:"amount" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "address and amount are required")
		return
	}

	if !h.mayActFor(c, req.Address) {
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || amount.Sign() <= 0 {
		respondError(c, http.StatusBadRequest, "amount must be a positive decimal")
		return
	}

	txHash, err := h.compensationService.Withdraw(c.Request.Context(), req.Address, amount)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{
		"address": req.Address,
		"amount":  amount.String(),
		"tx":      txHash,
	})
}

func (h *CompensationHandlers) mayActFor(c *gin.Context, address string) bool {
	session := sessionFrom(c)
	if session == nil {
		respondError(c, http.StatusUnauthorized, "unauthorized")
		return false
	}
	if session.Role != core.RoleAdmin && !strings.EqualFold(session.Address, address) {
		respondError(c, http.StatusForbidden, "cannot access compensation for another address")
		return false
	}
	return true
}
