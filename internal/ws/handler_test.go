package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibechat-service/internal/models"
	"vibechat-service/internal/session"
	"vibechat-service/internal/store"
)

type tokenAuth struct{}

func (tokenAuth) CurrentSession(token string) (models.Session, string, error) {
	if token != "good" {
		return models.Session{}, "", errors.New("invalid")
	}
	return models.Session{UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}, "t1", nil
}

type staticSessions struct {
	sess *session.Session
}

func (s staticSessions) Ensure(context.Context, string, string, time.Time) *session.Session {
	return s.sess
}

func startWSServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(nil, zerolog.Nop())
	sess := &session.Session{
		UserID: "u1",
		Chats:  store.NewChatStore(store.ChatStoreConfig{UserID: "u1", Log: zerolog.Nop()}),
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws", NewHandler(hub, tokenAuth{}, staticSessions{sess: sess}, zerolog.Nop()).Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHandshakeRejectsBadToken(t *testing.T) {
	_, url := startWSServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url+"?token=bad", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeSendsSnapshotAndTracksConnection(t *testing.T) {
	hub, url := startWSServer(t)

	header := http.Header{}
	header.Set("Authorization", "Bearer good")
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)

	var ev models.StoreEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.EventChatsUpdated, ev.Type)
	assert.Equal(t, 1, hub.Connections("u1"))

	hub.SendToUser("u1", models.StoreEvent{Type: models.EventMessageDiscarded, ChatID: "c1", MessageID: "temp-x"})
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.EventMessageDiscarded, ev.Type)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Connections("u1") == 0 }, 2*time.Second, 10*time.Millisecond)
}
