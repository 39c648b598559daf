package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibechat_http_requests_total",
			Help: "Total number of HTTP requests processed by the vibechat service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vibechat_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the server.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
	wsActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vibechat_ws_active_connections",
			Help: "Number of active websocket connections.",
		},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibechat_ws_events_total",
			Help: "Total number of store events pushed over websockets.",
		},
		[]string{"event"},
	)
	messagesSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibechat_messages_sent_total",
			Help: "Optimistic sends by outcome.",
		},
		[]string{"outcome"},
	)
	messagesReconciledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibechat_messages_reconciled_total",
			Help: "Pending messages confirmed, by the path that confirmed them.",
		},
		[]string{"path"},
	)
	realtimeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibechat_realtime_events_total",
			Help: "Change-feed notifications by result.",
		},
		[]string{"result"},
	)
	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vibechat_active_sessions",
			Help: "Number of signed-in sessions holding stores.",
		},
	)
	purgedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vibechat_purged_total",
			Help: "Expired rows removed by the purge worker.",
		},
		[]string{"kind"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vibechat_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		grpcServerHandledTotal,
		wsActiveConnections,
		wsEventsTotal,
		messagesSentTotal,
		messagesReconciledTotal,
		realtimeEventsTotal,
		activeSessions,
		purgedTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		statusInfo := status.Convert(err)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, statusInfo.Code().String()).Inc()
		return resp, err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

func IncWSActive() {
	wsActiveConnections.Inc()
}

func DecWSActive() {
	wsActiveConnections.Dec()
}

func IncWSEvent(event string) {
	wsEventsTotal.WithLabelValues(event).Inc()
}

// IncMessageSend records an optimistic send outcome: "confirmed" or "discarded".
func IncMessageSend(outcome string) {
	messagesSentTotal.WithLabelValues(outcome).Inc()
}

// IncReconciled records which path confirmed a pending message:
// "fetch_back", "realtime" or "duplicate".
func IncReconciled(path string) {
	messagesReconciledTotal.WithLabelValues(path).Inc()
}

func IncRealtimeEvent(result string) {
	realtimeEventsTotal.WithLabelValues(result).Inc()
}

func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}

func AddPurged(kind string, n int) {
	purgedTotal.WithLabelValues(kind).Add(float64(n))
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
