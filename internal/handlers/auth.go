package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibechat-service/internal/auth"
	"vibechat-service/internal/middleware"
	"vibechat-service/internal/models"
)

// Authenticator is the session contract the auth endpoints run on.
type Authenticator interface {
	SignUp(ctx context.Context, email, password string) (models.Session, error)
	SignIn(ctx context.Context, email, password string) (models.Session, error)
	SignOut(token string) error
	CurrentSession(token string) (models.Session, string, error)
}

// AuthHandler serves sign-up, sign-in, sign-out and session lookup.
type AuthHandler struct {
	auth  Authenticator
	audit Auditor
}

func NewAuthHandler(a Authenticator, audit Auditor) *AuthHandler {
	return &AuthHandler{auth: a, audit: audit}
}

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(r gin.IRouter) {
	r.POST("/auth/signup", h.SignUp)
	r.POST("/auth/login", h.SignIn)
	r.POST("/auth/logout", h.SignOut)
	r.GET("/auth/session", h.Session)
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(authStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Set(middleware.UserIDKey, sess.UserID)
	emitAudit(c, h.audit, "sign_up", "User signed up", nil)
	c.JSON(http.StatusCreated, sess)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(authStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Set(middleware.UserIDKey, sess.UserID)
	emitAudit(c, h.audit, "sign_in", "User signed in", nil)
	c.JSON(http.StatusOK, sess)
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	token := middleware.BearerToken(c.Request)
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
		return
	}
	current, _, err := h.auth.CurrentSession(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err := h.auth.SignOut(token); err != nil {
		c.JSON(authStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Set(middleware.UserIDKey, current.UserID)
	emitAudit(c, h.audit, "sign_out", "User signed out", nil)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Session(c *gin.Context) {
	current, _, err := h.auth.CurrentSession(middleware.BearerToken(c.Request))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, current)
}

func authStatus(err error) int {
	switch {
	case errors.Is(err, auth.ErrInvalidEmail), errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}
