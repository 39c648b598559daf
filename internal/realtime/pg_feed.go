package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"vibechat-service/internal/db"
	"vibechat-service/internal/models"
	"vibechat-service/internal/observability"
)

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
	pingInterval = 90 * time.Second
	loadTimeout  = 5 * time.Second
)

// Publisher is the sink for loaded inserts.
type Publisher interface {
	Publish(models.MessageRow)
}

// RowLoader fetches the message a notification points at.
type RowLoader interface {
	GetMessageByID(ctx context.Context, id string) (models.MessageRow, error)
}

// Notification is the trigger payload for one inserted message.
type Notification struct {
	ID     string `json:"id"`
	ChatID string `json:"chat_id"`
}

// PGFeed listens on the messages insert channel, loads each inserted row and
// republishes it.
type PGFeed struct {
	dsn       string
	loader    RowLoader
	publisher Publisher
	log       zerolog.Logger
}

func NewPGFeed(dsn string, loader RowLoader, publisher Publisher, log zerolog.Logger) *PGFeed {
	return &PGFeed{dsn: dsn, loader: loader, publisher: publisher, log: log}
}

// Run blocks until ctx is cancelled. The listener reconnects on its own; a nil
// notification marks a reconnect after which inserts in the gap are not replayed.
func (f *PGFeed) Run(ctx context.Context) error {
	listener := pq.NewListener(f.dsn, minReconnect, maxReconnect, f.onListenerEvent)
	defer listener.Close()

	if err := listener.Listen(db.MessageInsertChannel); err != nil {
		return fmt.Errorf("listen %s: %w", db.MessageInsertChannel, err)
	}
	f.log.Info().Str("channel", db.MessageInsertChannel).Msg("realtime feed listening")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				continue
			}
			f.dispatch(ctx, n.Extra)
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					f.log.Warn().Err(err).Msg("realtime feed ping failed")
				}
			}()
		}
	}
}

func (f *PGFeed) dispatch(ctx context.Context, payload string) {
	n, err := DecodeNotification(payload)
	if err != nil {
		observability.IncRealtimeEvent("decode_error")
		f.log.Warn().Err(err).Msg("realtime payload rejected")
		return
	}
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()
	row, err := f.loader.GetMessageByID(ctx, n.ID)
	if err != nil {
		observability.IncRealtimeEvent("load_error")
		f.log.Warn().Err(err).Str("message_id", n.ID).Str("chat_id", n.ChatID).Msg("realtime row load failed")
		return
	}
	observability.IncRealtimeEvent("delivered")
	f.publisher.Publish(row)
}

func (f *PGFeed) onListenerEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnected:
		f.log.Info().Msg("realtime feed connected")
	case pq.ListenerEventDisconnected:
		f.log.Warn().Err(err).Msg("realtime feed disconnected")
	case pq.ListenerEventReconnected:
		f.log.Info().Msg("realtime feed reconnected")
	case pq.ListenerEventConnectionAttemptFailed:
		f.log.Warn().Err(err).Msg("realtime feed connection attempt failed")
	}
}

// DecodeNotification parses a trigger payload.
func DecodeNotification(payload string) (Notification, error) {
	var n Notification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return Notification{}, fmt.Errorf("decode message notification: %w", err)
	}
	if n.ID == "" || n.ChatID == "" {
		return Notification{}, fmt.Errorf("decode message notification: missing id or chat_id")
	}
	return n, nil
}
