package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"vibechat-service/internal/observability"
)

// AuditRoutingKey is the topic audit envelopes are published under.
const AuditRoutingKey = "audit.vibechat"

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AuditEmitter publishes user-visible actions (sign-in, group creation,
// lock changes, accepted connections, vibe posts).
type AuditEmitter struct {
	publisher   Publisher
	routingKey  string
	service     string
	environment string
	log         zerolog.Logger
	now         func() time.Time
}

type AuditEnvelope struct {
	SchemaVersion int          `json:"schema_version"`
	EventType     string       `json:"event_type"`
	OccurredAt    string       `json:"occurred_at"`
	Service       string       `json:"service"`
	Environment   string       `json:"environment"`
	RequestID     string       `json:"request_id"`
	UserID        *string      `json:"user_id,omitempty"`
	Payload       AuditPayload `json:"payload"`
}

type AuditPayload struct {
	Level      string            `json:"level"`
	Action     string            `json:"action"`
	Text       string            `json:"text"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func NewAuditEmitter(publisher Publisher, service, environment string, log zerolog.Logger) *AuditEmitter {
	return &AuditEmitter{
		publisher:   publisher,
		routingKey:  AuditRoutingKey,
		service:     service,
		environment: environment,
		log:         log.With().Str("component", "audit").Logger(),
		now:         time.Now,
	}
}

// Emit publishes one audit envelope. The request id is taken from ctx.
func (e *AuditEmitter) Emit(ctx context.Context, action, text, userID string, attrs map[string]string) {
	e.emit(ctx, "info", action, text, userID, attrs)
}

// Warn is Emit at warning level.
func (e *AuditEmitter) Warn(ctx context.Context, action, text, userID string, attrs map[string]string) {
	e.emit(ctx, "warn", action, text, userID, attrs)
}

func (e *AuditEmitter) emit(ctx context.Context, level, action, text, userID string, attrs map[string]string) {
	if e == nil || e.publisher == nil {
		return
	}
	requestID := observability.RequestIDFromContext(ctx)
	e.log.Debug().Str("action", action).Str("request_id", requestID).Str("user_id", userID).Msg("audit emit")

	envelope := AuditEnvelope{
		SchemaVersion: 1,
		EventType:     "audit_log",
		OccurredAt:    e.now().UTC().Format(time.RFC3339Nano),
		Service:       e.service,
		Environment:   e.environment,
		RequestID:     requestID,
		Payload: AuditPayload{
			Level:      level,
			Action:     action,
			Text:       text,
			Attributes: attrs,
		},
	}
	if userID != "" {
		envelope.UserID = &userID
	}

	if err := e.publisher.Publish(ctx, e.routingKey, envelope); err != nil {
		e.log.Warn().Err(err).Str("action", action).Msg("audit publish failed")
	}
}
