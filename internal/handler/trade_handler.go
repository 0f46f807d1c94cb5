package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prop-journal/internal/middleware"
	"github.com/prop-journal/internal/repository"
	"github.com/prop-journal/internal/service"
	"github.com/prop-journal/pkg/response"
)

// TradeHandler handles trade API requests. Trade writes go through the
// commit pipeline so lifecycle detection and copy replication always run.
type TradeHandler struct {
	commitService  *service.CommitService
	tradeService   *service.TradeService
	accountService *service.AccountService
}

// NewTradeHandler creates a new TradeHandler
func NewTradeHandler(
	commitService *service.CommitService,
	tradeService *service.TradeService,
	accountService *service.AccountService,
) *TradeHandler {
	return &TradeHandler{
		commitService:  commitService,
		tradeService:   tradeService,
		accountService: accountService,
	}
}

// RegisterRoutes registers trade routes
func (h *TradeHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	trades := rg.Group("/trades", authMiddleware)
	{
		trades.POST("", h.CommitTrade)
		trades.GET("", h.GetTrades)
		trades.DELETE("/:id", h.DeleteTrade)
	}
}

// CommitTrade submits a trade through the pipeline
// POST /api/v1/trades
func (h *TradeHandler) CommitTrade(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.CommitTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	// Ownership check before the pipeline touches anything
	if _, err := h.accountService.GetAccountByID(userID, req.AccountID); err != nil {
		response.NotFound(c, "account not found")
		return
	}

	result, err := h.commitService.Commit(&req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommitInProgress), errors.Is(err, service.ErrResolutionPending):
			response.Conflict(c, err.Error())
		case errors.Is(err, repository.ErrAccountNotFound),
			errors.Is(err, repository.ErrTradeNotFound),
			errors.Is(err, service.ErrTradeAccountMismatch):
			response.NotFound(c, err.Error())
		case errors.Is(err, service.ErrMissingAccount),
			errors.Is(err, service.ErrMissingDate),
			errors.Is(err, service.ErrMissingSymbol),
			errors.Is(err, service.ErrMissingPnL):
			response.BadRequest(c, err.Error())
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Created(c, result)
}

// GetTrades lists trades for an account
// GET /api/v1/trades?account_id=&page=&page_size=
func (h *TradeHandler) GetTrades(c *gin.Context) {
	userID := middleware.GetUserID(c)

	accountID, err := strconv.ParseUint(c.Query("account_id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid account_id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	trades, total, err := h.tradeService.GetTradesPaginated(userID, uint(accountID), page, pageSize)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.SuccessPaginated(c, trades, total, page, pageSize)
}

// DeleteTrade deletes a trade
// DELETE /api/v1/trades/:id
func (h *TradeHandler) DeleteTrade(c *gin.Context) {
	userID := middleware.GetUserID(c)

	tradeID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.tradeService.DeleteTrade(userID, tradeID); err != nil {
		if errors.Is(err, repository.ErrTradeNotFound) || errors.Is(err, repository.ErrAccountNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, nil)
}
