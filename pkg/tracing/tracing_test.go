package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	Install(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/api/questions/:question_id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/progress", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/api/health", nil),
		httptest.NewRequest(http.MethodGet, "/api/questions/42", nil),
		httptest.NewRequest(http.MethodPost, "/api/progress", nil),
	} {
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "GET /api/questions/:question_id", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, "POST /api/progress", spans[1].Name())
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
