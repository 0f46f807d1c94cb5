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

// AccountHandler handles account API requests
type AccountHandler struct {
	accountService *service.AccountService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService *service.AccountService) *AccountHandler {
	return &AccountHandler{accountService: accountService}
}

// RegisterRoutes registers account routes
func (h *AccountHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	accounts := rg.Group("/accounts", authMiddleware)
	{
		accounts.POST("", h.CreateAccount)
		accounts.GET("", h.GetAccounts)
		accounts.GET("/:id", h.GetAccount)
		accounts.GET("/:id/stats", h.GetAccountStats)
		accounts.PUT("/:id", h.UpdateAccount)
		accounts.POST("/:id/reset", h.ResetAccount)
		accounts.DELETE("/:id", h.DeleteAccount)
	}
}

func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// CreateAccount handles account creation
// POST /api/v1/accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req service.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.CreateAccount(userID, &req)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Created(c, account)
}

// GetAccounts handles listing the user's accounts
// GET /api/v1/accounts
func (h *AccountHandler) GetAccounts(c *gin.Context) {
	userID := middleware.GetUserID(c)

	accounts, err := h.accountService.GetAccounts(userID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, accounts)
}

// GetAccount handles getting a single account
// GET /api/v1/accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	accountID, ok := parseID(c, "id")
	if !ok {
		return
	}

	account, err := h.accountService.GetAccountByID(userID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, account)
}

// GetAccountStats handles the derived stats read
// GET /api/v1/accounts/:id/stats
func (h *AccountHandler) GetAccountStats(c *gin.Context) {
	userID := middleware.GetUserID(c)

	accountID, ok := parseID(c, "id")
	if !ok {
		return
	}

	snapshot, err := h.accountService.GetAccountStats(c.Request.Context(), userID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, snapshot)
}

// UpdateAccount handles account updates
// PUT /api/v1/accounts/:id
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	accountID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	account, err := h.accountService.UpdateAccount(userID, accountID, &req)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, account)
}

// ResetAccount moves the account's stats anchor to now
// POST /api/v1/accounts/:id/reset
func (h *AccountHandler) ResetAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	accountID, ok := parseID(c, "id")
	if !ok {
		return
	}

	account, err := h.accountService.ResetAccount(userID, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, account)
}

// DeleteAccount handles account deletion
// DELETE /api/v1/accounts/:id
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	userID := middleware.GetUserID(c)

	accountID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.accountService.DeleteAccount(userID, accountID); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, nil)
}
