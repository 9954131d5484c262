package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahelpay/tontine-backend/middleware"
	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/services"
	"github.com/sahelpay/tontine-backend/utils"
)

// PayoutHandler handles payout HTTP requests
type PayoutHandler struct {
	payoutService *services.PayoutService
}

// NewPayoutHandler creates a new payout handler
func NewPayoutHandler(payoutService *services.PayoutService) *PayoutHandler {
	return &PayoutHandler{payoutService: payoutService}
}

// ProcessPayout handles POST /tours/:id/payout
func (h *PayoutHandler) ProcessPayout(c *gin.Context) {
	var req models.ProcessPayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.payoutService.ProcessPayout(middleware.PersonID(c), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payout)
}

// ConfirmPayout handles POST /tours/:id/payout/confirm
func (h *PayoutHandler) ConfirmPayout(c *gin.Context) {
	var req struct {
		Success bool `json:"success"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payout, err := h.payoutService.ConfirmPayout(middleware.PersonID(c), c.Param("id"), req.Success)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, payout)
}

// CloseTour handles POST /tours/:id/close
func (h *PayoutHandler) CloseTour(c *gin.Context) {
	tour, err := h.payoutService.CloseTour(middleware.PersonID(c), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, tour)
}
