package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/coaching-admin-api/pkg/middleware/requestid"
)

func TestGinMiddlewareLogsRequestWithIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)

	router := gin.New()
	router.Use(requestid.Middleware(), GinMiddleware(zap.New(core)))
	router.GET("/reports/:kind", func(c *gin.Context) {
		FromContext(c, nil).Info("inside handler")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/reports/finance", nil)
	req.Header.Set("X-Request-ID", "req-1")
	req.Header.Set("X-Actor-ID", "admin-7")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "inside handler", entries[0].Message)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])

	last := entries[1]
	assert.Equal(t, "http_request", last.Message)
	fields := last.ContextMap()
	assert.Equal(t, "/reports/:kind", fields["path"])
	assert.Equal(t, int64(http.StatusNoContent), fields["status"])
	assert.Equal(t, "admin-7", fields["actor_id"])
}

func TestFromContextFallsBack(t *testing.T) {
	fallback := zap.NewExample()
	assert.Same(t, fallback, FromContext(nil, fallback))
	assert.NotNil(t, FromContext(nil, nil))
}
