package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vibechat-service/internal/auth"
	"vibechat-service/internal/middleware"
	"vibechat-service/internal/mocks"
	"vibechat-service/internal/models"
	"vibechat-service/internal/realtime"
	"vibechat-service/internal/session"
	"vibechat-service/internal/store"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type auditRecord struct {
	action string
	userID string
	attrs  map[string]string
}

type recordingAuditor struct {
	mu      sync.Mutex
	records []auditRecord
}

func (a *recordingAuditor) Emit(_ context.Context, action, _ string, userID string, attrs map[string]string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, auditRecord{action: action, userID: userID, attrs: attrs})
}

func (a *recordingAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.records))
	for _, r := range a.records {
		out = append(out, r.action)
	}
	return out
}

type fixture struct {
	chats    *mocks.ChatServiceMock
	messages *mocks.MessageServiceMock
	profiles *mocks.ProfileServiceMock
	conns    *mocks.ConnectionServiceMock
	blocks   *mocks.BlockServiceMock
	statuses *mocks.StatusServiceMock
	vibes    *mocks.VibeServiceMock
	calls    *mocks.CallServiceMock
	audit    *recordingAuditor
	sess     *session.Session
	router   *gin.Engine
}

func newFixture(t *testing.T, chats ...models.Chat) *fixture {
	t.Helper()
	f := &fixture{
		chats:    new(mocks.ChatServiceMock),
		messages: new(mocks.MessageServiceMock),
		profiles: new(mocks.ProfileServiceMock),
		conns:    new(mocks.ConnectionServiceMock),
		blocks:   new(mocks.BlockServiceMock),
		statuses: new(mocks.StatusServiceMock),
		vibes:    new(mocks.VibeServiceMock),
		calls:    new(mocks.CallServiceMock),
		audit:    &recordingAuditor{},
	}
	log := zerolog.Nop()
	chatStore := store.NewChatStore(store.ChatStoreConfig{
		UserID:   "u1",
		Chats:    f.chats,
		Messages: f.messages,
		Profiles: f.profiles,
		Feed:     realtime.NewBroker(),
		Log:      log,
	})
	conns := store.NewConnectionStore(store.ConnectionStoreConfig{
		UserID:      "u1",
		Connections: f.conns,
		Blocks:      f.blocks,
		Profiles:    f.profiles,
		Log:         log,
	})
	f.sess = &session.Session{
		UserID:      "u1",
		Chats:       chatStore,
		Lock:        store.NewLockController("u1", chatStore, f.profiles, log),
		Connections: conns,
		Stories: store.NewStoryStore(store.StoryStoreConfig{
			UserID: "u1", Statuses: f.statuses, Vibes: f.vibes, Audience: conns.FriendIDs, Log: log,
		}),
		Calls: store.NewCallStore(store.CallStoreConfig{UserID: "u1", Calls: f.calls, Profiles: f.profiles, Log: log}),
	}

	if len(chats) > 0 {
		f.chats.On("GetChats", mock.Anything, "u1").Return(chats).Once()
		chatStore.RefreshChats(context.Background())
	}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.UserIDKey, "u1")
		c.Set(middleware.SessionKey, f.sess)
		c.Next()
	})
	NewProfileHandler(f.profiles).Register(r)
	NewChatHandler(f.audit).Register(r)
	NewConnectionHandler(f.audit).Register(r)
	NewStoryHandler(f.audit).Register(r)
	NewCallHandler().Register(r)
	RegisterDebugRoutes(r, f.audit, true)
	f.router = r
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestListChats(t *testing.T) {
	f := newFixture(t, models.Chat{ID: "c1", Participants: []string{"u1"}, UpdatedAt: t0})

	rec := f.do(http.MethodGet, "/chats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Chats []models.Chat `json:"chats"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Chats, 1)
	assert.Equal(t, "c1", resp.Chats[0].ID)
}

func TestMissingSessionIsUnauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewChatHandler(nil).Register(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPostMessageSuccess(t *testing.T) {
	f := newFixture(t, models.Chat{ID: "c1", Participants: []string{"u1"}, UpdatedAt: t0})
	f.messages.On("SendMessage", mock.Anything, mock.MatchedBy(func(m models.Message) bool {
		return m.ChatID == "c1" && m.Content == "hi" && m.State == models.StatePending
	})).Return(true).Once()
	f.messages.On("GetByClientID", mock.Anything, "c1", mock.AnythingOfType("string")).
		Return(models.Message{}, false).Once()

	rec := f.do(http.MethodPost, "/chats/c1/messages", `{"content":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var msg models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&msg))
	assert.Equal(t, models.StatePending, msg.State)
	assert.Contains(t, msg.ID, store.TempIDPrefix)
	f.messages.AssertExpectations(t)
}

func TestPostMessageErrors(t *testing.T) {
	f := newFixture(t, models.Chat{ID: "c1", Participants: []string{"u1"}, UpdatedAt: t0})
	f.messages.On("SendMessage", mock.Anything, mock.Anything).Return(false).Once()

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/chats/c1/messages", `{"content":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/chats/c1/messages", `{"content":"x","type":"gif"}`).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/chats/nope/messages", `{"content":"x"}`).Code)
	assert.Equal(t, http.StatusBadGateway, f.do(http.MethodPost, "/chats/c1/messages", `{"content":"x"}`).Code)
	assert.Empty(t, f.sess.Chats.Messages("c1"))
}

func TestGetMessagesUnknownChat(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/chats/c9/messages", "").Code)
}

func TestCreateGroup(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/groups", `{"name":" ","memberIds":["u2"]}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/groups", `{"name":"g","memberIds":["u1"]}`).Code)

	f.chats.On("CreateGroup", mock.Anything, models.NewGroup{Name: "g", AdminID: "u1", MemberIDs: []string{"u2"}}).
		Return("", false).Once()
	assert.Equal(t, http.StatusBadGateway, f.do(http.MethodPost, "/groups", `{"name":"g","memberIds":["u2"]}`).Code)

	f.chats.On("CreateGroup", mock.Anything, models.NewGroup{Name: "g", AdminID: "u1", MemberIDs: []string{"u2"}}).
		Return("g1", true).Once()
	f.chats.On("GetChats", mock.Anything, "u1").Return([]models.Chat{{ID: "g1", IsGroup: true, Participants: []string{"u1"}, UpdatedAt: t0}}).Once()
	rec := f.do(http.MethodPost, "/groups", `{"name":"g","memberIds":["u2"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"chatId":"g1"}`, rec.Body.String())
	assert.Equal(t, []string{"group_created"}, f.audit.actions())
}

func TestLockNeedsPinSetupThenLocks(t *testing.T) {
	f := newFixture(t, models.Chat{ID: "c1", Participants: []string{"u1"}, UpdatedAt: t0})
	f.profiles.On("GetOwnProfile", mock.Anything, "u1").Return(models.Profile{ID: "u1"}, true).Once()
	f.profiles.On("GetOwnProfile", mock.Anything, "u1").Return(models.Profile{ID: "u1"}.WithChatPin("1234"), true)
	f.profiles.On("UpdateProfile", mock.Anything, "u1", mock.Anything).Return(true).Once()
	f.chats.On("ToggleLockChat", mock.Anything, "c1", "u1", true).Return(true).Once()

	rec := f.do(http.MethodPost, "/chats/c1/lock", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(store.OutcomeNeedsPinSetup))

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/pin", `{"pin":"12a4"}`).Code)

	rec = f.do(http.MethodPost, "/pin", `{"pin":"1234"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), string(store.OutcomeLocked))
	assert.Equal(t, []string{"chat_lock_toggled"}, f.audit.actions())

	assert.Equal(t, http.StatusConflict, f.do(http.MethodPost, "/pin", `{"pin":"1234"}`).Code)
}

func TestAppUnlock(t *testing.T) {
	f := newFixture(t)
	f.profiles.On("GetOwnProfile", mock.Anything, "u1").Return(models.Profile{ID: "u1"}.WithChatPin("1234"), true)

	require.Equal(t, http.StatusOK, f.do(http.MethodPost, "/app/lock", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/app/unlock", `{"pin":"0000"}`).Code)
	assert.True(t, f.sess.Lock.AppLocked())
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/app/unlock", `{"pin":"1234"}`).Code)
	assert.False(t, f.sess.Lock.AppLocked())
}

func TestSendConnectionRequestBlocked(t *testing.T) {
	f := newFixture(t)
	f.blocks.On("IsBlocked", mock.Anything, "u1", "u2").Return(true).Once()

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodPost, "/connections/requests", `{"userId":"u2"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/connections/requests", `{"userId":"u1"}`).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/connections/requests", `{}`).Code)
	f.conns.AssertNotCalled(t, "SendRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestAcceptRequestAudits(t *testing.T) {
	f := newFixture(t)
	f.conns.On("AcceptRequest", mock.Anything, "r1", "u1").
		Return(models.ConnectionRequest{ID: "r1", FromUserID: "u2", ToUserID: "u1"}, "c7", true).Once()
	f.conns.On("RepairMissingChats", mock.Anything, "u1").Return(0)
	f.conns.On("GetFriends", mock.Anything, "u1").Return([]models.Profile{{ID: "u2"}})
	f.conns.On("GetPendingRequests", mock.Anything, "u1").Return([]models.ConnectionRequest{})
	f.blocks.On("GetBlockedUsers", mock.Anything, "u1").Return([]models.Profile{})

	rec := f.do(http.MethodPost, "/connections/requests/r1/accept", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"chatId":"c7"}`, rec.Body.String())
	assert.Equal(t, []string{"connection_accepted"}, f.audit.actions())

	rec = f.do(http.MethodGet, "/connections", "")
	assert.Contains(t, rec.Body.String(), `"u2"`)
}

func TestPostVibeMultipart(t *testing.T) {
	f := newFixture(t)
	f.vibes.On("UploadVibe", mock.Anything, "u1", models.VibeImage, []byte("jpegdata"), "hello").
		Return(models.Vibe{ID: "v1", UserID: "u1", Type: models.VibeImage, ExpiresAt: t0.Add(24 * time.Hour)}, true).Once()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("type", "image"))
	require.NoError(t, w.WriteField("note", "hello"))
	part, err := w.CreateFormFile("media", "pic.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpegdata"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/vibes", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"vibe_posted"}, f.audit.actions())
	f.vibes.AssertExpectations(t)
}

func TestPostVibeRequiresFile(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/vibes", `{}`).Code)
}

func TestViewersCount(t *testing.T) {
	f := newFixture(t)
	f.vibes.On("GetViewers", mock.Anything, "v1", "u1").Return([]models.VibeViewer{{UserID: "u2"}}).Once()

	rec := f.do(http.MethodGet, "/vibes/v1/viewers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestCallEndpoints(t *testing.T) {
	f := newFixture(t)
	f.calls.On("LogCall", mock.Anything, mock.Anything).
		Return(models.Call{ID: "k1", CallerID: "u1", ReceiverID: "u2", Type: models.CallVoice, Status: models.CallOutgoing}, true)

	assert.Equal(t, http.StatusConflict, f.do(http.MethodPost, "/calls/end", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPost, "/calls/start", `{"receiverId":"u2","type":"fax"}`).Code)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/calls/start", `{"receiverId":"u2","type":"voice"}`).Code)
	assert.Equal(t, http.StatusConflict, f.do(http.MethodPost, "/calls/start", `{"receiverId":"u3","type":"voice"}`).Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodPost, "/calls/end", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/calls/k9/accept", "").Code)
}

func TestUpdateProfileIgnoresPin(t *testing.T) {
	f := newFixture(t)
	f.profiles.On("UpdateProfile", mock.Anything, "u1", mock.MatchedBy(func(u models.ProfileUpdate) bool {
		return u.ChatPin == nil && u.Bio != nil && *u.Bio == "hey"
	})).Return(true).Once()
	f.profiles.On("GetOwnProfile", mock.Anything, "u1").Return(models.Profile{ID: "u1", Bio: "hey"}, true).Once()

	rec := f.do(http.MethodPut, "/profile", `{"bio":"hey","chatPin":"9999"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "9999")
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodPut, "/profile", `{"username":" "}`).Code)
	f.profiles.AssertExpectations(t)
}

func TestDebugAuditRoute(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/debug/audit-test", "").Code)
	assert.Equal(t, []string{"audit_test"}, f.audit.actions())
}

type fakeAuthenticator struct {
	signUpErr error
	signInErr error
}

func (a fakeAuthenticator) SignUp(_ context.Context, email, _ string) (models.Session, error) {
	if a.signUpErr != nil {
		return models.Session{}, a.signUpErr
	}
	return models.Session{UserID: "u1", Email: email, Token: "tok"}, nil
}

func (a fakeAuthenticator) SignIn(_ context.Context, email, _ string) (models.Session, error) {
	if a.signInErr != nil {
		return models.Session{}, a.signInErr
	}
	return models.Session{UserID: "u1", Email: email, Token: "tok"}, nil
}

func (a fakeAuthenticator) SignOut(token string) error {
	if token != "tok" {
		return auth.ErrInvalidToken
	}
	return nil
}

func (a fakeAuthenticator) CurrentSession(token string) (models.Session, string, error) {
	if token != "tok" {
		return models.Session{}, "", auth.ErrInvalidToken
	}
	return models.Session{UserID: "u1", Email: "ann@example.com"}, "t1", nil
}

func authRouter(a Authenticator, audit Auditor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewAuthHandler(a, audit).Register(r)
	return r
}

func TestAuthStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		auth fakeAuthenticator
		path string
		want int
	}{
		{"signup ok", fakeAuthenticator{}, "/auth/signup", http.StatusCreated},
		{"signup weak", fakeAuthenticator{signUpErr: auth.ErrWeakPassword}, "/auth/signup", http.StatusBadRequest},
		{"signup taken", fakeAuthenticator{signUpErr: auth.ErrEmailTaken}, "/auth/signup", http.StatusConflict},
		{"login ok", fakeAuthenticator{}, "/auth/login", http.StatusOK},
		{"login bad", fakeAuthenticator{signInErr: auth.ErrInvalidCredentials}, "/auth/login", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := authRouter(tc.auth, nil)
			req := httptest.NewRequest(http.MethodPost, tc.path, bytes.NewBufferString(`{"email":"ann@example.com","password":"secret1"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestSignOutAndSession(t *testing.T) {
	audit := &recordingAuditor{}
	r := authRouter(fakeAuthenticator{}, audit)

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"userId":"u1"`)

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer nope")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, audit.records, 1)
	assert.Equal(t, "sign_out", audit.records[0].action)
	assert.Equal(t, "u1", audit.records[0].userID)
}
