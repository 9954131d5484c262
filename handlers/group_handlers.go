package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sahelpay/tontine-backend/middleware"
	"github.com/sahelpay/tontine-backend/models"
	"github.com/sahelpay/tontine-backend/services"
	"github.com/sahelpay/tontine-backend/utils"
)

// GroupHandler handles group and membership HTTP requests
type GroupHandler struct {
	groupService *services.GroupService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// CreateGroup handles POST /groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupService.CreateGroup(middleware.PersonID(c), &req)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// GetGroup handles GET /groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	group, err := h.groupService.GetGroupByID(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, group)
}

// GetGroupByCode handles POST /groups/getByCode
func (h *GroupHandler) GetGroupByCode(c *gin.Context) {
	var req models.GetGroupByCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupService.GetGroupByCode(req.Code)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, group)
}

// ListMyGroups handles GET /groups
func (h *GroupHandler) ListMyGroups(c *gin.Context) {
	groups, err := h.groupService.ListGroupsForPerson(middleware.PersonID(c))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, groups)
}

// ListMembers handles GET /groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	members, err := h.groupService.ListMembers(c.Param("id"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, members)
}

// RemoveMember handles DELETE /groups/:id/members/:personId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	err := h.groupService.RemoveMember(middleware.PersonID(c), c.Param("id"), c.Param("personId"))
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	utils.HandleSuccess(c, gin.H{"message": "Member removed"})
}
