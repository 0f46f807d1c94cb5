package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prop-journal/internal/middleware"
	"github.com/prop-journal/internal/repository"
	"github.com/prop-journal/internal/service"
	"github.com/prop-journal/pkg/response"
)

// CopyGroupHandler handles copy group API requests
type CopyGroupHandler struct {
	copyGroupService *service.CopyGroupService
}

// NewCopyGroupHandler creates a new CopyGroupHandler
func NewCopyGroupHandler(copyGroupService *service.CopyGroupService) *CopyGroupHandler {
	return &CopyGroupHandler{copyGroupService: copyGroupService}
}

// RegisterRoutes registers copy group routes
func (h *CopyGroupHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	groups := rg.Group("/copy-groups", authMiddleware)
	{
		groups.POST("", h.CreateCopyGroup)
		groups.GET("", h.GetCopyGroups)
		groups.PUT("/:id", h.UpdateCopyGroup)
		groups.DELETE("/:id", h.DeleteCopyGroup)
	}
}

func (h *CopyGroupHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrCopyGroupNotFound), errors.Is(err, repository.ErrAccountNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrFollowerIsLeader), errors.Is(err, service.ErrNoMembers):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

// CreateCopyGroup creates a copy group
// POST /api/v1/copy-groups
func (h *CopyGroupHandler) CreateCopyGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.CreateCopyGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.copyGroupService.CreateCopyGroup(userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, group)
}

// GetCopyGroups lists the user's copy groups
// GET /api/v1/copy-groups
func (h *CopyGroupHandler) GetCopyGroups(c *gin.Context) {
	userID := middleware.GetUserID(c)

	groups, err := h.copyGroupService.GetCopyGroups(userID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, groups)
}

// UpdateCopyGroup updates a copy group
// PUT /api/v1/copy-groups/:id
func (h *CopyGroupHandler) UpdateCopyGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)

	groupID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateCopyGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	group, err := h.copyGroupService.UpdateCopyGroup(userID, groupID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, group)
}

// DeleteCopyGroup deletes a copy group
// DELETE /api/v1/copy-groups/:id
func (h *CopyGroupHandler) DeleteCopyGroup(c *gin.Context) {
	userID := middleware.GetUserID(c)

	groupID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.copyGroupService.DeleteCopyGroup(userID, groupID); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, nil)
}
