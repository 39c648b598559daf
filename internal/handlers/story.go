package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibechat-service/internal/models"
)

const maxVibeBytes = 50 << 20

// StoryHandler serves statuses and vibes.
type StoryHandler struct {
	audit Auditor
}

func NewStoryHandler(audit Auditor) *StoryHandler {
	return &StoryHandler{audit: audit}
}

func (h *StoryHandler) Register(r gin.IRouter) {
	r.GET("/stories", h.ListStories)
	r.POST("/stories", h.AddStory)
	r.POST("/stories/:story_id/view", h.ViewStory)
	r.GET("/vibes", h.ListVibes)
	r.POST("/vibes", h.PostVibe)
	r.POST("/vibes/:vibe_id/views", h.RecordView)
	r.GET("/vibes/:vibe_id/viewers", h.Viewers)
}

func (h *StoryHandler) ListStories(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": sess.Stories.Stories()})
}

func (h *StoryHandler) AddStory(c *gin.Context) {
	var req struct {
		Type     models.StatusType `json:"type"`
		Content  string            `json:"content"`
		MediaURL string            `json:"mediaUrl"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := sess.Stories.AddStory(c.Request.Context(), req.Type, req.Content, req.MediaURL); err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"stories": sess.Stories.Stories()})
}

func (h *StoryHandler) ViewStory(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if !sess.Stories.ViewStory(c.Param("story_id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *StoryHandler) ListVibes(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"vibes": sess.Stories.Vibes()})
}

// PostVibe takes a multipart form with the media file, its type and a note.
func (h *StoryHandler) PostVibe(c *gin.Context) {
	file, err := c.FormFile("media")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media file is required"})
		return
	}
	if file.Size > maxVibeBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "media too large"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media unreadable"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxVibeBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media unreadable"})
		return
	}

	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	vibe, err := sess.Stories.PostVibe(c.Request.Context(), models.VibeType(c.PostForm("type")), data, c.PostForm("note"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	emitAudit(c, h.audit, "vibe_posted", "Vibe posted", map[string]string{"vibe_id": vibe.ID})
	c.JSON(http.StatusCreated, vibe)
}

func (h *StoryHandler) RecordView(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := sess.Stories.RecordView(c.Request.Context(), c.Param("vibe_id")); err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Viewers is only meaningful for the caller's own vibes; others get an empty list.
func (h *StoryHandler) Viewers(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	viewers := sess.Stories.Viewers(c.Request.Context(), c.Param("vibe_id"))
	c.JSON(http.StatusOK, gin.H{"viewers": viewers, "count": len(viewers)})
}
