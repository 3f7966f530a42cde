package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"zyncchat-api/services"
	"zyncchat-api/utils"
)

type AIController struct {
	ai  *services.AIService
	seo *services.SEOService
}

func NewAIController(ai *services.AIService, seo *services.SEOService) *AIController {
	return &AIController{ai: ai, seo: seo}
}

type chatbotRequest struct {
	Message string `json:"message"`
}

type translateRequest struct {
	Message        string `json:"message"`
	TargetLanguage string `json:"targetLanguage"`
}

type textToImageRequest struct {
	Prompt string `json:"prompt"`
}

// keywordList accepts either a JSON array or a comma separated string.
type keywordList []string

func (k *keywordList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*k = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return errors.New("keywords must be an array or a comma separated string")
	}
	*k = strings.Split(joined, ",")
	return nil
}

type seoRequest struct {
	Content  string      `json:"content"`
	Keywords keywordList `json:"keywords"`
	AuditURL string      `json:"auditUrl"`
}

func (ac *AIController) Chatbot(c *gin.Context) {
	var req chatbotRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := ac.ai.Chat(c.Request.Context(), req.Message)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "", gin.H{"reply": reply})
}

func (ac *AIController) Translate(c *gin.Context) {
	var req translateRequest
	if !bindJSON(c, &req) {
		return
	}

	translated, err := ac.ai.Translate(c.Request.Context(), req.Message, req.TargetLanguage)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "", gin.H{"translatedText": translated})
}

func (ac *AIController) TextToImage(c *gin.Context) {
	var req textToImageRequest
	if !bindJSON(c, &req) {
		return
	}

	output, err := ac.ai.GenerateFromPrompt(c.Request.Context(), req.Prompt)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "", gin.H{"prompt": req.Prompt, "output": output})
}

func (ac *AIController) OptimizeSEO(c *gin.Context) {
	var req seoRequest
	if !bindJSON(c, &req) {
		return
	}

	content, audit, err := ac.seo.Optimize(c.Request.Context(), req.Content, req.Keywords, req.AuditURL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	utils.SendSuccess(c, "", gin.H{
		"optimizedContent": content.Content,
		"metaDescription":  content.MetaDescription,
		"seoAudit":         audit,
	})
}

// VoiceHealth reports that the voice routes are mounted.
func (ac *AIController) VoiceHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "VoiceAI service is running"})
}
