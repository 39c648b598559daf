package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibechat-service/internal/models"
	"vibechat-service/internal/observability"
	"vibechat-service/internal/session"
)

type fakeAuth struct {
	valid map[string]models.Session
}

func (f fakeAuth) CurrentSession(token string) (models.Session, string, error) {
	sess, ok := f.valid[token]
	if !ok {
		return models.Session{}, "", errors.New("invalid")
	}
	return sess, "tid-" + token, nil
}

type fakeSessions struct {
	calls []string
}

func (f *fakeSessions) Ensure(_ context.Context, userID, tokenID string, _ time.Time) *session.Session {
	f.calls = append(f.calls, userID+"/"+tokenID)
	return &session.Session{UserID: userID}
}

func setupRouter(sessions *fakeSessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	auth := fakeAuth{valid: map[string]models.Session{"good": {UserID: "u1"}}}
	r.GET("/me", AuthMiddleware(auth, sessions), func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"user":    sess.UserID,
			"token":   c.GetString(TokenIDKey),
			"request": observability.RequestIDFromContext(c.Request.Context()),
		})
	})
	return r
}

func TestAuthMiddlewareRejects(t *testing.T) {
	sessions := &fakeSessions{}
	r := setupRouter(sessions)

	for _, header := range []string{"", "Basic abc", "Bearer bad"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
	assert.Empty(t, sessions.calls)
}

func TestAuthMiddlewareAttachesSession(t *testing.T) {
	sessions := &fakeSessions{}
	r := setupRouter(sessions)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "bearer good")
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user":"u1","token":"tid-good","request":"req-1"}`, rec.Body.String())
	assert.Equal(t, "req-1", rec.Header().Get("X-Request-Id"))
	assert.Equal(t, []string{"u1/tid-good"}, sessions.calls)
}

func TestRequestIDGenerated(t *testing.T) {
	r := setupRouter(&fakeSessions{})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}
