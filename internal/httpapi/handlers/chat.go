package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jonafit/coach-platform/internal/common"
)

type sendChatReq struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message" binding:"required"`
	Type           string `json:"conversation_type"`
}

// SendChatMessage appends one user/assistant exchange. Omitting
// conversation_id starts a new conversation.
func (h *Handler) SendChatMessage(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendChatReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 40001, "invalid request body")
		return
	}

	res, err := h.ChatSvc.Send(c.Request.Context(), u.ID, req.ConversationID, req.Message, req.Type)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{
		"conversation_id": res.ConversationID,
		"reply":           res.Reply,
		"usage":           res.Usage,
	})
}

func (h *Handler) ListConversations(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	convs, err := h.ChatSvc.ListConversations(c.Request.Context(), u.ID, limit)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, convs)
}

// ListConversationMessages pages a conversation oldest-first. before_id
// bounds the page from above for backwards scrolling.
func (h *Handler) ListConversationMessages(c *gin.Context) {
	u, ok := caller(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	beforeID, _ := strconv.ParseUint(c.Query("before_id"), 10, 64)

	msgs, next, err := h.ChatSvc.History(c.Request.Context(), u.ID, c.Param("conversation_id"), limit, beforeID)
	if err != nil {
		failFromErr(c, err)
		return
	}
	common.OK(c, gin.H{"messages": msgs, "next_before_id": next})
}
