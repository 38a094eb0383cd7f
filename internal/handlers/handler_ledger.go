package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/contalibre/contalibre_app/internal/dto"
)

// ledgerHandler handles HTTP requests for direct journal entry operations.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers routes related to journal entries.
func registerLedgerRoutes(rg *gin.RouterGroup, ls portssvc.LedgerSvcFacade) {
	h := newLedgerHandler(ls)

	entries := rg.Group("/entries")
	{
		entries.POST("", h.postEntry)
		entries.GET("", h.listEntries)
		entries.GET("/:entryID", h.getEntry)
		entries.POST("/:entryID/reverse", h.reverseEntry)
	}
}

func (h *ledgerHandler) postEntry(c *gin.Context) {
	var draft dto.EntryDraft
	if !bindJSON(c, &draft) {
		return
	}

	entry, err := h.ledgerService.Post(c.Request.Context(), draft, callerID(c))
	if err != nil {
		respondError(c, err, "Failed to post entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

func (h *ledgerHandler) getEntry(c *gin.Context) {
	entry, err := h.ledgerService.GetEntry(c.Request.Context(), c.Param("entryID"))
	if err != nil {
		respondError(c, err, "Failed to get entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

func (h *ledgerHandler) listEntries(c *gin.Context) {
	limit, offset := paginationParams(c)
	includeReversals := c.Query("includeReversals") == "true"

	entries, err := h.ledgerService.ListEntries(c.Request.Context(), limit, offset, includeReversals)
	if err != nil {
		respondError(c, err, "Failed to list entries")
		return
	}
	c.JSON(http.StatusOK, dto.ToEntryResponses(entries))
}

func (h *ledgerHandler) reverseEntry(c *gin.Context) {
	reversing, err := h.ledgerService.Reverse(c.Request.Context(), c.Param("entryID"), callerID(c))
	if err != nil {
		respondError(c, err, "Failed to reverse entry")
		return
	}
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversing))
}
