package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/havenapp/haven-backend/internal/http/response"
	"github.com/havenapp/haven-backend/internal/pkg/dbctx"
	"github.com/havenapp/haven-backend/internal/services"
)

type ConversationHandler struct {
	conversationService services.ConversationService
}

func NewConversationHandler(conversationService services.ConversationService) *ConversationHandler {
	return &ConversationHandler{conversationService: conversationService}
}

func (ch *ConversationHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	conversations, err := ch.conversationService.List(dbctx.Context{Ctx: c.Request.Context()}, limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"conversations": conversations})
}

func (ch *ConversationHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := ch.conversationService.Delete(dbctx.Context{Ctx: c.Request.Context()}, id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{})
}

func (ch *ConversationHandler) GetMessages(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	messages, err := ch.conversationService.GetMessages(dbctx.Context{Ctx: c.Request.Context()}, id, limit, offset)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusOK, gin.H{"messages": messages})
}

func (ch *ConversationHandler) SendMessage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	var req struct {
		Content string `json:"content"`
		Type    string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, err := ch.conversationService.SendMessage(dbctx.Context{Ctx: c.Request.Context()}, id, req.Content, req.Type)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, http.StatusCreated, gin.H{"message": msg})
}
