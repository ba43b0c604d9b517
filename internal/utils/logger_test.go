package utils

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newBufferLogger(buf *bytes.Buffer) Logger {
	return NewSlogLogger(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	fallback := newBufferLogger(&buf)

	if got := FromContext(context.Background(), fallback); got != fallback {
		t.Errorf("FromContext() without value should return fallback")
	}

	scoped := fallback.With("request_id", "abc")
	ctx := WithLogger(context.Background(), scoped)
	if got := FromContext(ctx, fallback); got != scoped {
		t.Errorf("FromContext() should return stored logger")
	}
}

func TestMiddlewareLogsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-1")
		c.Next()
	})
	router.Use(ContextLogger(logger))
	router.Use(LoggerMiddleware(logger))
	router.GET("/missing", func(c *gin.Context) {
		FromContext(c.Request.Context(), logger).Info("inside handler")
		c.Status(http.StatusNotFound)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing?x=1", nil))

	out := buf.String()
	if strings.Count(out, `"request_id":"req-1"`) != 2 {
		t.Errorf("expected request_id on both log lines, got %s", out)
	}
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"path":"/missing?x=1"`) {
		t.Errorf("unexpected access log: %s", out)
	}
}
