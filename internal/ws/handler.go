package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"vibechat-service/internal/middleware"
	"vibechat-service/internal/models"
	"vibechat-service/internal/observability"
)

const pongWait = 60 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler upgrades authenticated requests and streams the user's store events.
type Handler struct {
	hub      *Hub
	auth     middleware.TokenAuthenticator
	sessions middleware.SessionProvider
	log      zerolog.Logger
}

func NewHandler(hub *Hub, auth middleware.TokenAuthenticator, sessions middleware.SessionProvider, log zerolog.Logger) *Handler {
	return &Handler{hub: hub, auth: auth, sessions: sessions, log: log.With().Str("component", "ws_handler").Logger()}
}

// Handle authenticates via the Authorization header or the token query
// parameter, then keeps the socket open until the client goes away.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := observability.Tracer().Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := middleware.BearerToken(c.Request)
	if token == "" {
		token = c.Query("token")
	}
	sess, tokenID, err := h.auth.CurrentSession(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	userSession := h.sessions.Ensure(ctx, sess.UserID, tokenID, sess.ExpiresAt)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("user_id", sess.UserID).Msg("websocket upgrade failed")
		return
	}
	info := ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      sess.UserID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	cl := h.hub.Add(conn, info)
	observability.IncWSActive()
	h.hub.publishWSEvent(context.Background(), info, "ws_connect", "")

	snapshot := models.StoreEvent{Type: models.EventChatsUpdated, Chats: userSession.Chats.Chats()}
	h.hub.SendToUser(sess.UserID, snapshot)

	go h.readLoop(conn, cl)
}

func (h *Handler) readLoop(conn *websocket.Conn, cl *Client) {
	var closeReason string
	defer func() {
		if h.hub.Remove(cl) {
			observability.DecWSActive()
		}
		h.hub.publishWSEvent(context.Background(), cl.info, "ws_disconnect", closeReason)
		_ = conn.Close()
	}()

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.hub.publishWSEvent(context.Background(), cl.info, "ws_error", closeReason)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
