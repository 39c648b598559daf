package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vibechat-service/internal/models"
)

// CallHandler serves the simulated call log.
type CallHandler struct{}

func NewCallHandler() *CallHandler {
	return &CallHandler{}
}

func (h *CallHandler) Register(r gin.IRouter) {
	r.GET("/calls", h.History)
	r.POST("/calls/start", h.Start)
	r.POST("/calls/end", h.End)
	r.POST("/calls/:call_id/accept", h.Accept)
	r.POST("/calls/:call_id/reject", h.Reject)
}

func (h *CallHandler) History(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	resp := gin.H{"calls": sess.Calls.History(), "peers": sess.Calls.Peers()}
	if active, ok := sess.Calls.Active(); ok {
		resp["active"] = active
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CallHandler) Start(c *gin.Context) {
	var req struct {
		ReceiverID string          `json:"receiverId" binding:"required"`
		Type       models.CallType `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	active, err := sess.Calls.StartCall(c.Request.Context(), req.ReceiverID, req.Type)
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, active)
}

func (h *CallHandler) End(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	call, err := sess.Calls.EndCall(c.Request.Context())
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}

func (h *CallHandler) Accept(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	active, err := sess.Calls.AcceptCall(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, active)
}

func (h *CallHandler) Reject(c *gin.Context) {
	sess, ok := sessionFromContext(c)
	if !ok {
		return
	}
	call, err := sess.Calls.RejectCall(c.Request.Context(), c.Param("call_id"))
	if err != nil {
		abortWithStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, call)
}
