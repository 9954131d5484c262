package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahelpay/tontine-backend/middleware"
	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/services"
	"github.com/sahelpay/tontine-backend/utils"
)

// JoinRequestHandler handles join-request HTTP requests
type JoinRequestHandler struct {
	joinRequestService *services.JoinRequestService
}

// NewJoinRequestHandler creates a new join request handler
func NewJoinRequestHandler(joinRequestService *services.JoinRequestService) *JoinRequestHandler {
	return &JoinRequestHandler{joinRequestService: joinRequestService}
}

// RequestToJoin handles POST /join-requests
func (h *JoinRequestHandler) RequestToJoin(c *gin.Context) {
	var req models.CreateJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	joinRequest, err := h.joinRequestService.RequestToJoin(middleware.PersonID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, joinRequest)
}

// ReviewJoinRequest handles POST /join-requests/:id/review
func (h *JoinRequestHandler) ReviewJoinRequest(c *gin.Context) {
	var req models.ReviewJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	joinRequest, err := h.joinRequestService.ReviewJoinRequest(middleware.PersonID(c), c.Param("id"), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, joinRequest)
}

// CancelJoinRequest handles POST /join-requests/:id/cancel
func (h *JoinRequestHandler) CancelJoinRequest(c *gin.Context) {
	joinRequest, err := h.joinRequestService.CancelJoinRequest(middleware.PersonID(c), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, joinRequest)
}

// ListJoinRequests handles GET /groups/:id/join-requests
func (h *JoinRequestHandler) ListJoinRequests(c *gin.Context) {
	joinRequests, err := h.joinRequestService.ListJoinRequests(middleware.PersonID(c), c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, joinRequests)
}
