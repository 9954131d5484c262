package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahelpay/tontine-backend/middleware"
	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/services"
	"github.com/sahelpay/tontine-backend/utils"
)

// PaymentHandler handles payment and contribution HTTP requests
type PaymentHandler struct {
	paymentService *services.PaymentService
	ledgerService  *services.LedgerService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, ledgerService *services.LedgerService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		ledgerService:  ledgerService,
	}
}

// DeclarePayment handles POST /payments/declare
func (h *PaymentHandler) DeclarePayment(c *gin.Context) {
	var req models.DeclarePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.DeclarePayment(middleware.PersonID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// ValidatePayment handles POST /payments/:id/validate
func (h *PaymentHandler) ValidatePayment(c *gin.Context) {
	var req models.ValidatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.paymentService.ValidatePayment(middleware.PersonID(c), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, payment)
}

// GatewayCallback handles POST /payments/callback. The mobile-money gateway
// calls this endpoint, so it is not behind the auth middleware.
func (h *PaymentHandler) GatewayCallback(c *gin.Context) {
	var req models.GatewayCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.paymentService.HandleGatewayCallback(&req); err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, gin.H{"message": "Callback processed"})
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, payment)
}

// ListGroupPayments handles GET /groups/:id/payments
func (h *PaymentHandler) ListGroupPayments(c *gin.Context) {
	payments, err := h.paymentService.ListPaymentsByGroup(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, payments)
}

// GetContribution handles GET /contributions/:id
func (h *PaymentHandler) GetContribution(c *gin.Context) {
	contribution, err := h.ledgerService.GetContribution(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, contribution)
}

// ListTourContributions handles GET /tours/:id/contributions
func (h *PaymentHandler) ListTourContributions(c *gin.Context) {
	contributions, err := h.ledgerService.ListContributionsByTour(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, contributions)
}

// ListGroupContributions handles GET /groups/:id/contributions
func (h *PaymentHandler) ListGroupContributions(c *gin.Context) {
	contributions, err := h.ledgerService.ListContributionsByGroup(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, contributions)
}

// WaiveContribution handles POST /contributions/:id/waive
func (h *PaymentHandler) WaiveContribution(c *gin.Context) {
	var req models.WaiveContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contribution, err := h.ledgerService.WaiveContribution(middleware.PersonID(c), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, contribution)
}
