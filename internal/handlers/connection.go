package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ConnectionHandler serves friends, connection requests and blocks.
type ConnectionHandler struct {
	audit Auditor
}

func NewConnectionHandler(audit Auditor) *ConnectionHandler {
	return &ConnectionHandler{audit: audit}
}

func (h *ConnectionHandler) Register(r gin.IRouter) {
	r.GET("/connections", h.ListFriends)
	r.GET("/connections/requests", h.ListRequests)
	r.POST("/connections/requests", h.SendRequest)
	r.POST("/connections/requests/:request_id/accept", h.AcceptRequest)
	r.POST("/connections/requests/:request_id/reject", h.RejectRequest)
	r.GET("/blocks", h.ListBlocked)
	r.POST("/blocks", h.Block)
	r.DELETE("/blocks/:user_id", h.Unblock)
}

type userRef struct {
	UserID string `json:"userId" binding:"required"`
}

func (h *ConnectionHandler) ListFriends(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"friends": sess.Connections.Friends()})
}

func (h *ConnectionHandler) ListRequests(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": sess.Connections.Requests()})
}

func (h *ConnectionHandler) SendRequest(c *gin.Context) {
	var req userRef
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := sess.Connections.SendRequest(c.Request.Context(), req.UserID); err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.Status(http.StatusCreated)
}

// AcceptRequest accepts an incoming request and returns the 1:1 chat it opened.
func (h *ConnectionHandler) AcceptRequest(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	requestID := c.Param("request_id")
	chatID, err := sess.Connections.AcceptRequest(c.Request.Context(), requestID)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	emitAudit(c, h.audit, "connection_accepted", "Connection accepted", map[string]string{
		"request_id": requestID,
		"chat_id":    chatID,
	})
	c.JSON(http.StatusOK, gin.H{"chatId": chatID})
}

func (h *ConnectionHandler) RejectRequest(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := sess.Connections.RejectRequest(c.Request.Context(), c.Param("request_id")); err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ConnectionHandler) ListBlocked(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": sess.Connections.BlockedUsers()})
}

func (h *ConnectionHandler) Block(c *gin.Context) {
	var req userRef
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := sess.Connections.BlockUser(c.Request.Context(), req.UserID); err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ConnectionHandler) Unblock(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	if err := sess.Connections.UnblockUser(c.Request.Context(), c.Param("user_id")); err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
