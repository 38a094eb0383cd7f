package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
)

// reportingHandler handles HTTP requests for reports.
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
}

func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{reportingService: rs}
}

// registerReportingRoutes registers routes for reports.
func registerReportingRoutes(rg *gin.RouterGroup, rs portssvc.ReportingSvcFacade) {
	h := newReportingHandler(rs)

	reports := rg.Group("/reports")
	{
		reports.GET("/trial-balance", h.trialBalance)
		reports.GET("/profit-and-loss", h.profitAndLoss)
		reports.GET("/integrity", h.checkIntegrity)
	}
}

func (h *reportingHandler) trialBalance(c *gin.Context) {
	asOf, ok := dateQuery(c, "asOf", time.Now().UTC())
	if !ok {
		return
	}

	report, err := h.reportingService.TrialBalance(c.Request.Context(), asOf)
	if err != nil {
		respondError(c, err, "Failed to build trial balance")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) profitAndLoss(c *gin.Context) {
	now := time.Now().UTC()
	from, ok := dateQuery(c, "from", now.AddDate(0, -1, 0))
	if !ok {
		return
	}
	to, ok := dateQuery(c, "to", now)
	if !ok {
		return
	}

	report, err := h.reportingService.ProfitAndLoss(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err, "Failed to build profit and loss")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *reportingHandler) checkIntegrity(c *gin.Context) {
	findings, err := h.reportingService.CheckIntegrity(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to run integrity sweep")
		return
	}
	c.JSON(http.StatusOK, gin.H{"findings": findings, "clean": len(findings) == 0})
}

// dateQuery parses an RFC 3339 or YYYY-MM-DD query param, writing the 400
// response itself on a malformed value.
func dateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " date"})
	return time.Time{}, false
}
