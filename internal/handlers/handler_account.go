package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/dto"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerService  portssvc.LedgerSvcFacade
	reconService   portssvc.ReconciliationSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade, ls portssvc.LedgerSvcFacade, rs portssvc.ReconciliationSvcFacade) *accountHandler {
	return &accountHandler{
		accountService: as,
		ledgerService:  ls,
		reconService:   rs,
	}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, as portssvc.AccountSvcFacade, ls portssvc.LedgerSvcFacade, rs portssvc.ReconciliationSvcFacade) {
	h := newAccountHandler(as, ls, rs)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:code", h.getAccount)
		accounts.DELETE("/:code", h.deactivateAccount)
		accounts.GET("/:code/balance", h.getAccountBalance)
		accounts.GET("/:code/reconciliation", h.getReconciliationStatus)
		accounts.GET("/:code/unreconciled", h.listUnreconciled)
	}
}

func (h *accountHandler) createAccount(c *gin.Context) {
	var req dto.CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), req, callerID(c))
	if err != nil {
		respondError(c, err, "Failed to create account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToAccountResponse(account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccountByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "Failed to get account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	limit, offset := paginationParams(c)
	accounts, err := h.accountService.ListAccounts(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponses(accounts))
}

func (h *accountHandler) deactivateAccount(c *gin.Context) {
	code := c.Param("code")
	if err := h.accountService.DeactivateAccount(c.Request.Context(), code, callerID(c)); err != nil {
		respondError(c, err, "Failed to deactivate account")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *accountHandler) getAccountBalance(c *gin.Context) {
	code := c.Param("code")
	balance, err := h.ledgerService.GetAccountBalance(c.Request.Context(), code)
	if err != nil {
		respondError(c, err, "Failed to get account balance")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accountCode": code, "balance": balance})
}

func (h *accountHandler) getReconciliationStatus(c *gin.Context) {
	recon, err := h.reconService.GetStatus(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "Failed to get reconciliation status")
		return
	}
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(recon))
}

func (h *accountHandler) listUnreconciled(c *gin.Context) {
	txns, err := h.reconService.ListUnreconciled(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err, "Failed to list unreconciled transactions")
		return
	}
	c.JSON(http.StatusOK, txns)
}

// paginationParams reads limit/offset query params with sane defaults.
func paginationParams(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v > 0 && v <= 500 {
		limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}
