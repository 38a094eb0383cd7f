package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/dto"
)

// eventHandler handles HTTP requests for business events and invoices.
type eventHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newEventHandler(ps portssvc.PostingSvcFacade) *eventHandler {
	return &eventHandler{postingService: ps}
}

// registerEventRoutes registers routes for business events and invoices.
func registerEventRoutes(rg *gin.RouterGroup, ps portssvc.PostingSvcFacade) {
	h := newEventHandler(ps)

	events := rg.Group("/events")
	{
		events.POST("", h.postEvent)
		events.POST("/:reference/resync", h.resyncEvent)
	}

	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.registerInvoice)
		invoices.GET("/:invoiceID", h.getInvoice)
	}
}

func (h *eventHandler) postEvent(c *gin.Context) {
	var req dto.PostEventRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.postingService.PostEvent(c.Request.Context(), req.ToBusinessEvent(), callerID(c))
	if err != nil {
		respondError(c, err, "Failed to post event")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

func (h *eventHandler) resyncEvent(c *gin.Context) {
	var req dto.PostEventRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.postingService.ResyncEvent(c.Request.Context(), c.Param("reference"), req.ToBusinessEvent(), callerID(c))
	if err != nil {
		respondError(c, err, "Failed to resync event")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *eventHandler) registerInvoice(c *gin.Context) {
	var req dto.RegisterInvoiceRequest
	if !bindJSON(c, &req) {
		return
	}

	invoice, err := h.postingService.RegisterInvoice(c.Request.Context(), req, callerID(c))
	if err != nil {
		respondError(c, err, "Failed to register invoice")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

func (h *eventHandler) getInvoice(c *gin.Context) {
	invoice, err := h.postingService.GetInvoice(c.Request.Context(), c.Param("invoiceID"))
	if err != nil {
		respondError(c, err, "Failed to get invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}
