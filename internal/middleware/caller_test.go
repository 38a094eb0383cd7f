package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/contalibre/contalibre_app/internal/middleware"
)

func callerRouter(defaultUserID string, captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CallerIDMiddleware(defaultUserID))
	r.GET("/", func(c *gin.Context) {
		*captured = middleware.CallerIDFromCtx(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestCallerIDFromHeader(t *testing.T) {
	var got string
	r := callerRouter("system", &got)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "maria")
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "maria", got)
}

func TestCallerIDFallsBackToConfiguredDefault(t *testing.T) {
	var got string
	r := callerRouter("batch-import", &got)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "batch-import", got)
}
