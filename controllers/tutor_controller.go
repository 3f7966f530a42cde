package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"zyncchat-api/middleware"
	"zyncchat-api/services"
)

type TutorController struct {
	tutor *services.TutorService
}

func NewTutorController(tutor *services.TutorService) *TutorController {
	return &TutorController{tutor: tutor}
}

type askRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	Language       string `json:"language"`
	Topic          string `json:"topic"`
}

// Ask handles POST /api/tutor/ask
func (tc *TutorController) Ask(c *gin.Context) {
	var req askRequest
	if !bindJSON(c, &req) {
		return
	}

	conv, reply, err := tc.tutor.Ask(c.Request.Context(), middleware.OptionalUserID(c), services.AskInput{
		Message:        req.Message,
		ConversationID: req.ConversationID,
		Language:       req.Language,
		Topic:          req.Topic,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"conversationId": conv.ID,
		"assistant":      reply,
		"messages":       conv.Messages,
	})
}

func (tc *TutorController) ListConversations(c *gin.Context) {
	convs, err := tc.tutor.Conversations(c.Request.Context(), middleware.OptionalUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, convs)
}

func (tc *TutorController) GetConversation(c *gin.Context) {
	conv, err := tc.tutor.Conversation(c.Request.Context(), middleware.OptionalUserID(c), c.Param("conversationId"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (tc *TutorController) ClearConversation(c *gin.Context) {
	if err := tc.tutor.Clear(c.Request.Context(), middleware.OptionalUserID(c), c.Param("conversationId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
