package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahelpay/tontine-backend/middleware"
	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/services"
	"github.com/sahelpay/tontine-backend/utils"
)

// DelegationHandler handles delegation HTTP requests
type DelegationHandler struct {
	delegationService *services.DelegationService
}

// NewDelegationHandler creates a new delegation handler
func NewDelegationHandler(delegationService *services.DelegationService) *DelegationHandler {
	return &DelegationHandler{delegationService: delegationService}
}

// CreateDelegation handles POST /delegations
func (h *DelegationHandler) CreateDelegation(c *gin.Context) {
	var req models.CreateDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	delegation, err := h.delegationService.CreateDelegation(middleware.PersonID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, delegation)
}

// ApproveDelegation handles POST /delegations/:id/approve
func (h *DelegationHandler) ApproveDelegation(c *gin.Context) {
	delegation, err := h.delegationService.ApproveDelegation(middleware.PersonID(c), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, delegation)
}

// RevokeDelegation handles POST /delegations/:id/revoke
func (h *DelegationHandler) RevokeDelegation(c *gin.Context) {
	delegation, err := h.delegationService.RevokeDelegation(c.Param("id"), middleware.PersonID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, delegation)
}

// ListDelegations handles GET /groups/:id/delegations
func (h *DelegationHandler) ListDelegations(c *gin.Context) {
	delegations, err := h.delegationService.ListDelegations(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, delegations)
}
