package observability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSplitFullMethod(t *testing.T) {
	svc, method := splitFullMethod("/grpc.health.v1.Health/Check")
	assert.Equal(t, "grpc.health.v1.Health", svc)
	assert.Equal(t, "Check", method)

	svc, method = splitFullMethod("bogus")
	assert.Equal(t, "unknown", svc)
	assert.Equal(t, "unknown", method)
}

func TestIPFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", IPFromRequest(r))

	r.Header.Set("X-Forwarded-For", "1.2.3.4, 10.0.0.1")
	assert.Equal(t, "1.2.3.4", IPFromRequest(r))
}

func TestBuildHeaders(t *testing.T) {
	assert.Empty(t, BuildHeaders(context.Background()))

	ctx := WithRequestID(context.Background(), "req-1")
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(ctx, "op")
	defer span.End()

	headers := BuildHeaders(ctx)
	assert.Equal(t, "req-1", headers["x-request-id"])
	assert.Equal(t, span.SpanContext().TraceID().String(), headers["trace_id"])
}

func TestHTTPMetricsMiddlewareCountsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(HTTPMetricsMiddleware())
	router.GET("/chats/:chat_id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/chats/:chat_id", "204"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/chats/abc", nil))
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/chats/:chat_id", "204"))
	assert.Equal(t, before+1, after)
}

func TestInitTracingWithoutEndpoint(t *testing.T) {
	shutdown, err := InitTracing(context.Background(), "svc", "test", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
