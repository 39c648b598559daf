package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vibechat-service/internal/models"
	"vibechat-service/internal/session"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey  = "userID"
	TokenIDKey = "tokenID"
	SessionKey = "session"
)

// TokenAuthenticator resolves bearer tokens to sessions.
type TokenAuthenticator interface {
	CurrentSession(token string) (models.Session, string, error)
}

// SessionProvider hands out the per-user session for a validated token.
type SessionProvider interface {
	Ensure(ctx context.Context, userID, tokenID string, expiresAt time.Time) *session.Session
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// AuthMiddleware validates the Authorization header and attaches the caller's session.
func AuthMiddleware(auth TokenAuthenticator, sessions SessionProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		token := BearerToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}

		sess, tokenID, err := auth.CurrentSession(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(UserIDKey, sess.UserID)
		c.Set(TokenIDKey, tokenID)
		c.Set(SessionKey, sessions.Ensure(c.Request.Context(), sess.UserID, tokenID, sess.ExpiresAt))
		c.Next()
	}
}

// CurrentSession returns the session attached by AuthMiddleware.
func CurrentSession(c *gin.Context) (*session.Session, bool) {
	val, ok := c.Get(SessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := val.(*session.Session)
	return sess, ok && sess != nil
}
