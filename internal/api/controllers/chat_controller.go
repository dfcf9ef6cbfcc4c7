package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bettybots/internal/models/request_models"
	"bettybots/internal/models/response_models"
	"bettybots/internal/services"
	"bettybots/pkg/utils"
)

type ChatController struct {
	chatService services.ChatServiceInterface
	log         *zap.Logger
}

func NewChatController(chatService services.ChatServiceInterface, log *zap.Logger) *ChatController {
	return &ChatController{chatService: chatService, log: log}
}

// Chat godoc
// @Summary Ask the tenant's assistant a question
// @Tags Chat
// @Accept json
// @Produce json
// @Param request body request_models.ChatRequest true "Message and recent history"
// @Success 200 {object} response_models.ChatResponse
// @Failure 402 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/chat [post]
func (ch *ChatController) Chat(c *gin.Context) {
	var req request_models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, "invalid-request")
		return
	}

	reply, err := ch.chatService.Reply(c.Request.Context(), req)
	if err != nil {
		utils.HandleServiceError(c, ch.log, err)
		return
	}

	c.JSON(http.StatusOK, response_models.ChatResponse{Reply: reply})
}
