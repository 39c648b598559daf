package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"vibechat-service/internal/auth"
	"vibechat-service/internal/models"
	"vibechat-service/internal/observability"
	"vibechat-service/internal/store"
)

const openTimeout = 15 * time.Second

// Services are the backends every session's stores are built on.
type Services struct {
	Chats       store.ChatService
	Messages    store.MessageService
	Profiles    store.ProfileService
	Connections store.ConnectionService
	Blocks      store.BlockService
	Statuses    store.StatusService
	Vibes       store.VibeService
	Calls       store.CallService
	Feed        store.Feed
}

// Notifier delivers store events to a user's live connections.
type Notifier interface {
	SendToUser(userID string, event models.StoreEvent)
}

// Session is the set of stores belonging to one signed-in user. It lives as
// long as at least one of the user's tokens is valid.
type Session struct {
	UserID      string
	Chats       *store.ChatStore
	Lock        *store.LockController
	Connections *store.ConnectionStore
	Stories     *store.StoryStore
	Calls       *store.CallStore

	ready   chan struct{}
	tokens  map[string]time.Time
	offPush func()
}

// Ready is closed once the initial load has finished.
func (s *Session) Ready() <-chan struct{} { return s.ready }

// Manager opens stores on sign-in and tears them down on sign-out.
type Manager struct {
	svc      Services
	pageSize int
	notify   Notifier
	log      zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(svc Services, pageSize int, notify Notifier, log zerolog.Logger) *Manager {
	return &Manager{
		svc:      svc,
		pageSize: pageSize,
		notify:   notify,
		log:      log.With().Str("component", "session_manager").Logger(),
		sessions: map[string]*Session{},
	}
}

// HandleSessionEvent follows the authenticator's sign-in and sign-out stream.
func (m *Manager) HandleSessionEvent(ev auth.SessionEvent) {
	switch ev.Kind {
	case auth.SignedIn:
		ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
		defer cancel()
		m.Ensure(ctx, ev.UserID, ev.TokenID, ev.ExpiresAt)
	case auth.SignedOut:
		m.Release(ev.UserID, ev.TokenID)
	}
}

// Ensure returns the user's session, opening it when needed, and records
// tokenID as one of its holders.
func (m *Manager) Ensure(ctx context.Context, userID, tokenID string, expiresAt time.Time) *Session {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	if !ok {
		sess = m.build(userID)
		m.sessions[userID] = sess
		observability.SetActiveSessions(len(m.sessions))
	}
	if tokenID != "" {
		sess.tokens[tokenID] = expiresAt
	}
	m.mu.Unlock()

	if !ok {
		m.start(ctx, sess)
		m.log.Info().Str("user_id", userID).Msg("session opened")
		return sess
	}
	select {
	case <-sess.ready:
	case <-ctx.Done():
	}
	return sess
}

// Get returns an open session.
func (m *Manager) Get(userID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[userID]
	return sess, ok
}

// Release drops tokenID; the session closes with its last token.
func (m *Manager) Release(userID, tokenID string) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(sess.tokens, tokenID)
	if len(sess.tokens) > 0 {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, userID)
	observability.SetActiveSessions(len(m.sessions))
	m.mu.Unlock()

	m.stop(sess)
	m.log.Info().Str("user_id", userID).Msg("session closed")
}

// Sweep forgets expired tokens and closes sessions left without any.
func (m *Manager) Sweep(now time.Time) int {
	m.mu.Lock()
	var closed []*Session
	for userID, sess := range m.sessions {
		for id, exp := range sess.tokens {
			if !exp.After(now) {
				delete(sess.tokens, id)
			}
		}
		if len(sess.tokens) == 0 {
			delete(m.sessions, userID)
			closed = append(closed, sess)
		}
	}
	observability.SetActiveSessions(len(m.sessions))
	m.mu.Unlock()

	for _, sess := range closed {
		m.stop(sess)
		m.log.Info().Str("user_id", sess.UserID).Msg("session expired")
	}
	return len(closed)
}

// Close tears down every session.
func (m *Manager) Close() {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		all = append(all, sess)
	}
	m.sessions = map[string]*Session{}
	observability.SetActiveSessions(0)
	m.mu.Unlock()

	for _, sess := range all {
		m.stop(sess)
	}
}

func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *Manager) build(userID string) *Session {
	log := m.log.With().Str("user_id", userID).Logger()
	chats := store.NewChatStore(store.ChatStoreConfig{
		UserID:   userID,
		PageSize: m.pageSize,
		Chats:    m.svc.Chats,
		Messages: m.svc.Messages,
		Profiles: m.svc.Profiles,
		Feed:     m.svc.Feed,
		Log:      log,
	})
	conns := store.NewConnectionStore(store.ConnectionStoreConfig{
		UserID:       userID,
		Connections:  m.svc.Connections,
		Blocks:       m.svc.Blocks,
		Profiles:     m.svc.Profiles,
		ChatsChanged: chats.RefreshChats,
		Log:          log,
	})
	return &Session{
		UserID:      userID,
		Chats:       chats,
		Lock:        store.NewLockController(userID, chats, m.svc.Profiles, log),
		Connections: conns,
		Stories: store.NewStoryStore(store.StoryStoreConfig{
			UserID:   userID,
			Statuses: m.svc.Statuses,
			Vibes:    m.svc.Vibes,
			Audience: conns.FriendIDs,
			Log:      log,
		}),
		Calls: store.NewCallStore(store.CallStoreConfig{
			UserID:   userID,
			Calls:    m.svc.Calls,
			Profiles: m.svc.Profiles,
			Log:      log,
		}),
		ready:  make(chan struct{}),
		tokens: map[string]time.Time{},
	}
}

func (m *Manager) start(ctx context.Context, sess *Session) {
	defer close(sess.ready)
	if m.notify != nil {
		userID := sess.UserID
		sess.offPush = sess.Chats.OnChange(func(ev models.StoreEvent) {
			m.notify.SendToUser(userID, ev)
		})
	}
	sess.Chats.Start(ctx)
	sess.Connections.Refresh(ctx)
	sess.Stories.Refresh(ctx)
	sess.Calls.Refresh(ctx)
}

func (m *Manager) stop(sess *Session) {
	<-sess.ready
	if sess.offPush != nil {
		sess.offPush()
	}
	sess.Chats.Stop()
}
