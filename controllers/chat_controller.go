package controllers

import (
	"github.com/gin-gonic/gin"

	"zyncchat-api/middleware"
	"zyncchat-api/services"
	"zyncchat-api/utils"
)

type ChatController struct {
	chat *services.ChatService
}

func NewChatController(chat *services.ChatService) *ChatController {
	return &ChatController{chat: chat}
}

func (cc *ChatController) GetToken(c *gin.Context) {
	token, err := cc.chat.Token(middleware.CurrentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "", gin.H{"token": token})
}
