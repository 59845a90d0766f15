package handlers

import (
	"net/http"

	"jobportal_backend/internal/dto"
	"jobportal_backend/internal/services"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	conversationService services.ConversationService
	messageLimiter      gin.HandlerFunc
}

// NewChatHandler: messageLimiter может быть nil
func NewChatHandler(base *BaseHandler, conversationService services.ConversationService, messageLimiter gin.HandlerFunc) *ChatHandler {
	return &ChatHandler{
		BaseHandler:         base,
		conversationService: conversationService,
		messageLimiter:      messageLimiter,
	}
}

func (h *ChatHandler) RegisterRoutes(r *gin.RouterGroup) {
	chat := r.Group("/chat")
	{
		chat.POST("/conversations", h.CreateConversation)
		chat.GET("/conversations", h.ListConversations)
		chat.GET("/:id", h.GetConversation)

		send := []gin.HandlerFunc{h.PostMessage}
		if h.messageLimiter != nil {
			send = append([]gin.HandlerFunc{h.messageLimiter}, send...)
		}
		chat.POST("/:id/message", send...)
	}
}

func (h *ChatHandler) CreateConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateConversationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	conv, created, err := h.conversationService.Create(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	success(c, status, "", gin.H{"conversation": conv})
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	convs, err := h.conversationService.ListForUser(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "", gin.H{"conversations": convs})
}

func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	conv, err := h.conversationService.Get(h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	success(c, http.StatusOK, "", gin.H{"conversation": conv})
}

func (h *ChatHandler) PostMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	msg, conv, err := h.conversationService.PostMessage(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"message":      msg,
		"conversation": conv,
	})
}
