package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahelpay/tontine-backend/middleware"
	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/services"
	"github.com/sahelpay/tontine-backend/utils"
)

// TourHandler handles tour scheduling HTTP requests
type TourHandler struct {
	tourService *services.TourService
}

// NewTourHandler creates a new tour handler
func NewTourHandler(tourService *services.TourService) *TourHandler {
	return &TourHandler{tourService: tourService}
}

// GenerateTours handles POST /groups/:id/tours/generate
func (h *TourHandler) GenerateTours(c *gin.Context) {
	var req models.GenerateToursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tours, err := h.tourService.GenerateTours(c.Param("id"), middleware.PersonID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tours)
}

// ReorganizeTours handles POST /groups/:id/tours/reorganize
func (h *TourHandler) ReorganizeTours(c *gin.Context) {
	var req models.ReorganizeToursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tours, err := h.tourService.ReorganizeTours(c.Param("id"), middleware.PersonID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, tours)
}

// ListTours handles GET /groups/:id/tours
func (h *TourHandler) ListTours(c *gin.Context) {
	tours, err := h.tourService.ListTours(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, tours)
}

// GetTourSnapshot handles GET /tours/:id
func (h *TourHandler) GetTourSnapshot(c *gin.Context) {
	snapshot, err := h.tourService.GetTourSnapshot(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, snapshot)
}
