package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vibechat-service/internal/mocks"
	"vibechat-service/internal/observability"
)

func TestEmitBuildsEnvelope(t *testing.T) {
	pub := new(mocks.PublisherMock)
	e := NewAuditEmitter(pub, "vibechat-service", "test", zerolog.Nop())
	e.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	var got AuditEnvelope
	pub.On("Publish", mock.Anything, AuditRoutingKey, mock.AnythingOfType("telemetry.AuditEnvelope")).
		Run(func(args mock.Arguments) { got = args.Get(2).(AuditEnvelope) }).
		Return(nil).Once()

	ctx := observability.WithRequestID(context.Background(), "req-1")
	e.Emit(ctx, "group.created", "group created", "u1", map[string]string{"chat_id": "g1"})

	pub.AssertExpectations(t)
	assert.Equal(t, "audit_log", got.EventType)
	assert.Equal(t, "req-1", got.RequestID)
	require.NotNil(t, got.UserID)
	assert.Equal(t, "u1", *got.UserID)
	assert.Equal(t, "group.created", got.Payload.Action)
	assert.Equal(t, "info", got.Payload.Level)
	assert.Equal(t, "g1", got.Payload.Attributes["chat_id"])
	assert.Equal(t, "2024-05-01T12:00:00Z", got.OccurredAt)
}

func TestEmitWithoutUser(t *testing.T) {
	pub := new(mocks.PublisherMock)
	e := NewAuditEmitter(pub, "vibechat-service", "test", zerolog.Nop())

	pub.On("Publish", mock.Anything, AuditRoutingKey, mock.MatchedBy(func(env AuditEnvelope) bool {
		return env.UserID == nil && env.Payload.Level == "warn"
	})).Return(assert.AnError).Once()

	e.Warn(context.Background(), "debug.audit", "ping", "", nil)
	pub.AssertExpectations(t)
}

func TestNilEmitterIsSafe(t *testing.T) {
	var e *AuditEmitter
	e.Emit(context.Background(), "x", "y", "u1", nil)
}
