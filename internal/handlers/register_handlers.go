package handlers

import (
	portssvc "github.com/contalibre/contalibre_app/internal/core/ports/services"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes sets up all application routes, injecting dependencies using
// interfaces.
func RegisterRoutes(r *gin.Engine, services *portssvc.ServiceContainer) {
	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to the specific
// entity route registrations.
func setupAPIV1Routes(r *gin.Engine, services *portssvc.ServiceContainer) {
	v1 := r.Group("/api/v1")

	registerAccountRoutes(v1, services.Account, services.Ledger, services.Reconciliation)
	registerLedgerRoutes(v1, services.Ledger)
	registerEventRoutes(v1, services.Posting)
	registerReconciliationRoutes(v1, services.Reconciliation)
	registerReportingRoutes(v1, services.Reporting)
}
