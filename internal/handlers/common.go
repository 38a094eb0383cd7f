package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contalibre/contalibre_app/internal/apperrors"
	"github.com/contalibre/contalibre_app/internal/middleware"
)

// callerID identifies the acting user for audit fields, as resolved by
// middleware.CallerIDMiddleware.
func callerID(c *gin.Context) string {
	return middleware.CallerIDFromCtx(c)
}

// respondError maps service errors onto HTTP statuses. Sentinel checks run in
// specificity order; anything unrecognized is a 500 with a generic message so
// internals do not leak.
func respondError(c *gin.Context, err error, logMsg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrImbalancedEntry),
		errors.Is(err, apperrors.ErrUnknownAccount):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrEntryNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrAlreadyVoided),
		errors.Is(err, apperrors.ErrOverpaymentRejected),
		errors.Is(err, apperrors.ErrReconciliationCompleted):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": logMsg})
	}
}

// bindJSON binds the request body and writes the 400 response on failure.
func bindJSON(c *gin.Context, target any) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		logger.Warn("Failed to bind request body", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return false
	}
	return true
}
