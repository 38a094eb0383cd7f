package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/dto"
)

// reconciliationHandler handles HTTP requests for bank reconciliation.
type reconciliationHandler struct {
	reconService portssvc.ReconciliationSvcFacade
}

func newReconciliationHandler(rs portssvc.ReconciliationSvcFacade) *reconciliationHandler {
	return &reconciliationHandler{reconService: rs}
}

// registerReconciliationRoutes registers routes for reconciliation periods.
func registerReconciliationRoutes(rg *gin.RouterGroup, rs portssvc.ReconciliationSvcFacade) {
	h := newReconciliationHandler(rs)

	recons := rg.Group("/reconciliations")
	{
		recons.POST("", h.startReconciliation)
		recons.POST("/adjustments", h.forceAdjustment)
		recons.POST("/:reconID/import", h.importStatement)
		recons.POST("/:reconID/reconcile", h.markReconciled)
	}
}

func (h *reconciliationHandler) startReconciliation(c *gin.Context) {
	var req dto.StartReconciliationRequest
	if !bindJSON(c, &req) {
		return
	}

	recon, err := h.reconService.Start(c.Request.Context(), req, callerID(c))
	if err != nil {
		respondError(c, err, "Failed to start reconciliation")
		return
	}
	c.JSON(http.StatusCreated, dto.ToReconciliationResponse(recon))
}

func (h *reconciliationHandler) importStatement(c *gin.Context) {
	var req dto.ImportStatementRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.reconService.ImportStatement(c.Request.Context(), c.Param("reconID"), req.ToStatementTransactions(), callerID(c))
	if err != nil {
		respondError(c, err, "Failed to import statement")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *reconciliationHandler) markReconciled(c *gin.Context) {
	var req dto.MarkReconciledRequest
	if !bindJSON(c, &req) {
		return
	}

	recon, err := h.reconService.MarkReconciled(c.Request.Context(), c.Param("reconID"), req.TransactionIDs, callerID(c))
	if err != nil {
		respondError(c, err, "Failed to mark transactions reconciled")
		return
	}
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(recon))
}

func (h *reconciliationHandler) forceAdjustment(c *gin.Context) {
	var req dto.ForceAdjustmentRequest
	if !bindJSON(c, &req) {
		return
	}

	txn, err := h.reconService.ForceAdjustment(c.Request.Context(), req, callerID(c))
	if err != nil {
		respondError(c, err, "Failed to book adjustment")
		return
	}
	c.JSON(http.StatusCreated, txn)
}
