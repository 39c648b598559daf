package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vibechat-service/internal/middleware"
	"vibechat-service/internal/models"
	"vibechat-service/internal/store"
)

// ProfileHandler serves the caller's own profile and user search.
type ProfileHandler struct {
	profiles store.ProfileService
}

func NewProfileHandler(profiles store.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

func (h *ProfileHandler) Register(r gin.IRouter) {
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
	r.GET("/users/search", h.SearchUsers)
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profile, ok := h.profiles.GetOwnProfile(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpdateProfile upserts the caller's profile. The PIN is managed through /pin.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	update.ChatPin = nil
	if update.Username != nil && strings.TrimSpace(*update.Username) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username cannot be blank"})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	if !h.profiles.UpdateProfile(c.Request.Context(), userID, update) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "profile could not be saved"})
		return
	}
	profile, ok := h.profiles.GetOwnProfile(c.Request.Context(), userID)
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) SearchUsers(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": sess.Connections.SearchUsers(c.Request.Context(), c.Query("q"))})
}
