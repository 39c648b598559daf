package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibechat-service/internal/middleware"
	"vibechat-service/internal/session"
	"vibechat-service/internal/store"
)

// Auditor records user-visible actions. A nil Auditor disables auditing.
type Auditor interface {
	Emit(ctx context.Context, action, text, userID string, attrs map[string]string)
}

func emitAudit(c *gin.Context, a Auditor, action, text string, attrs map[string]string) {
	if a == nil {
		return
	}
	a.Emit(c.Request.Context(), action, text, c.GetString(middleware.UserIDKey), attrs)
}

func sessionFromContext(c *gin.Context) (*session.Session, bool) {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no session"})
	}
	return sess, ok
}

func storeStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrUnknownChat), errors.Is(err, store.ErrUnknownCall),
		errors.Is(err, store.ErrUnknownVibe):
		return http.StatusNotFound
	case errors.Is(err, store.ErrEmptyMessage),
		errors.Is(err, store.ErrInvalidType),
		errors.Is(err, store.ErrGroupNameRequired),
		errors.Is(err, store.ErrGroupNeedsMembers),
		errors.Is(err, store.ErrEmptyEmoji),
		errors.Is(err, store.ErrInvalidPin),
		errors.Is(err, store.ErrSelfRequest),
		errors.Is(err, store.ErrInvalidParticipant):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrBlocked):
		return http.StatusForbidden
	case errors.Is(err, store.ErrCallInProgress),
		errors.Is(err, store.ErrNoActiveCall),
		errors.Is(err, store.ErrNoPinPrompt):
		return http.StatusConflict
	case errors.Is(err, store.ErrUploadFailed):
		return http.StatusInternalServerError
	case errors.Is(err, store.ErrSendFailed),
		errors.Is(err, store.ErrGroupCreateFailed),
		errors.Is(err, store.ErrReactionFailed),
		errors.Is(err, store.ErrLockFailed),
		errors.Is(err, store.ErrRequestFailed),
		errors.Is(err, store.ErrStoryFailed):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func abortWithStoreError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(storeStatus(err), gin.H{"error": err.Error()})
}
