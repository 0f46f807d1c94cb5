package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prop-journal/internal/service"
	"github.com/prop-journal/pkg/response"
)

// ResolutionHandler is the interaction surface for the event sequencer: it
// presents one pending lifecycle event at a time and accepts the user's
// resolution before the queue advances.
type ResolutionHandler struct {
	commitService *service.CommitService
}

// NewResolutionHandler creates a new ResolutionHandler
func NewResolutionHandler(commitService *service.CommitService) *ResolutionHandler {
	return &ResolutionHandler{commitService: commitService}
}

// RegisterRoutes registers resolution routes
func (h *ResolutionHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	resolution := rg.Group("/resolution", authMiddleware)
	{
		resolution.GET("/current", h.GetCurrent)
		resolution.POST("/rank-up", h.ResolveRankUp)
		resolution.POST("/breach", h.ResolveBreach)
		resolution.POST("/payout", h.ResolvePayout)
		resolution.POST("/skip", h.Skip)
		resolution.POST("/abandon", h.Abandon)
	}
}

func (h *ResolutionHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoPendingEvent):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrEventKindMismatch):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err.Error())
	}
}

func (h *ResolutionHandler) respondWithNext(c *gin.Context) {
	response.Success(c, gin.H{
		"state": h.commitService.State(),
		"next":  h.commitService.PendingEvent(),
	})
}

// GetCurrent returns the event awaiting resolution, if any
// GET /api/v1/resolution/current
func (h *ResolutionHandler) GetCurrent(c *gin.Context) {
	response.Success(c, gin.H{
		"state": h.commitService.State(),
		"event": h.commitService.PendingEvent(),
	})
}

// ResolveRankUp resolves the pending rank-up or target-hit event
// POST /api/v1/resolution/rank-up
func (h *ResolutionHandler) ResolveRankUp(c *gin.Context) {
	var req service.RankUpResolution
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.commitService.ResolveRankUp(&req); err != nil {
		h.handleError(c, err)
		return
	}

	h.respondWithNext(c)
}

// ResolveBreach resolves the pending breach event
// POST /api/v1/resolution/breach
func (h *ResolutionHandler) ResolveBreach(c *gin.Context) {
	var req service.BreachResolution
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.commitService.ResolveBreach(&req); err != nil {
		h.handleError(c, err)
		return
	}

	h.respondWithNext(c)
}

// ResolvePayout resolves the pending payout event
// POST /api/v1/resolution/payout
func (h *ResolutionHandler) ResolvePayout(c *gin.Context) {
	var req service.PayoutResolution
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.commitService.ResolvePayout(&req); err != nil {
		h.handleError(c, err)
		return
	}

	h.respondWithNext(c)
}

// Skip declines the pending event
// POST /api/v1/resolution/skip
func (h *ResolutionHandler) Skip(c *gin.Context) {
	if err := h.commitService.SkipEvent(); err != nil {
		h.handleError(c, err)
		return
	}

	h.respondWithNext(c)
}

// Abandon skips all remaining events
// POST /api/v1/resolution/abandon
func (h *ResolutionHandler) Abandon(c *gin.Context) {
	h.commitService.AbandonResolution()
	h.respondWithNext(c)
}
