package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibechat-service/internal/models"
	"vibechat-service/internal/store"
)

// ChatHandler serves the chat list, messages, groups and the PIN lock.
type ChatHandler struct {
	audit Auditor
}

func NewChatHandler(audit Auditor) *ChatHandler {
	return &ChatHandler{audit: audit}
}

func (h *ChatHandler) Register(r gin.IRouter) {
	r.GET("/chats", h.ListChats)
	r.POST("/chats/refresh", h.RefreshChats)
	r.GET("/chats/:chat_id/messages", h.GetMessages)
	r.POST("/chats/:chat_id/messages", h.PostMessage)
	r.POST("/chats/:chat_id/read", h.MarkAsRead)
	r.POST("/chats/:chat_id/lock", h.ToggleLock)
	r.POST("/chats/:chat_id/open", h.OpenChat)
	r.POST("/chats/:chat_id/messages/:message_id/reactions", h.ToggleReaction)
	r.POST("/groups", h.CreateGroup)
	r.POST("/pin", h.SubmitPin)
	r.DELETE("/pin", h.CancelPin)
	r.POST("/app/lock", h.LockApp)
	r.POST("/app/unlock", h.UnlockApp)
}

// ListChats returns the cached chat list with the participants' profiles.
func (h *ChatHandler) ListChats(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": sess.Chats.Chats(), "profiles": sess.Chats.Profiles()})
}

func (h *ChatHandler) RefreshChats(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	sess.Chats.RefreshChats(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"chats": sess.Chats.Chats(), "profiles": sess.Chats.Profiles()})
}

func (h *ChatHandler) GetMessages(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	msgs, err := sess.Chats.LoadMessages(c.Request.Context(), c.Param("chat_id"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (h *ChatHandler) PostMessage(c *gin.Context) {
	var req struct {
		Content   string             `json:"content"`
		Type      models.MessageType `json:"type"`
		MediaURL  string             `json:"mediaUrl"`
		ReplyToID string             `json:"replyToId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	msg, err := sess.Chats.SendMessage(c.Request.Context(), store.SendInput{
		ChatID:    c.Param("chat_id"),
		Content:   req.Content,
		Type:      req.Type,
		MediaURL:  req.MediaURL,
		ReplyToID: req.ReplyToID,
	})
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) MarkAsRead(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := sess.Chats.MarkAsRead(c.Param("chat_id")); err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) ToggleReaction(c *gin.Context) {
	var req struct {
		Emoji string `json:"emoji"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	msg, err := sess.Chats.ToggleReaction(c.Request.Context(), c.Param("chat_id"), c.Param("message_id"), req.Emoji)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, msg)
}

func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		MemberIDs   []string `json:"memberIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	chatID, err := sess.Chats.CreateGroup(c.Request.Context(), req.Name, req.Description, req.MemberIDs)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	emitAudit(c, h.audit, "group_created", "Group created", map[string]string{"chat_id": chatID})
	c.JSON(http.StatusCreated, gin.H{"chatId": chatID})
}

// ToggleLock locks or unlocks a chat, possibly asking for a PIN first.
func (h *ChatHandler) ToggleLock(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	res, err := sess.Lock.ToggleLock(c.Request.Context(), c.Param("chat_id"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	h.auditLock(c, res)
	c.JSON(http.StatusOK, res)
}

func (h *ChatHandler) OpenChat(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	res, err := sess.Lock.OpenChat(c.Param("chat_id"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *ChatHandler) SubmitPin(c *gin.Context) {
	var req struct {
		Pin string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	res, err := sess.Lock.SubmitPin(c.Request.Context(), req.Pin)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	h.auditLock(c, res)
	c.JSON(http.StatusOK, res)
}

func (h *ChatHandler) CancelPin(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	sess.Lock.Cancel()
	c.Status(http.StatusNoContent)
}

func (h *ChatHandler) LockApp(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	sess.Lock.Lock()
	c.JSON(http.StatusOK, gin.H{"locked": true})
}

func (h *ChatHandler) UnlockApp(c *gin.Context) {
	var req struct {
		Pin string `json:"pin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if !sess.Lock.Unlock(c.Request.Context(), req.Pin) {
		c.JSON(http.StatusForbidden, gin.H{"locked": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"locked": false})
}

func (h *ChatHandler) auditLock(c *gin.Context, res store.LockResult) {
	if res.Outcome != store.OutcomeLocked && res.Outcome != store.OutcomeUnlocked {
		return
	}
	emitAudit(c, h.audit, "chat_lock_toggled", "Chat lock changed", map[string]string{
		"chat_id": res.ChatID,
		"outcome": string(res.Outcome),
	})
}
