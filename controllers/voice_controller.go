package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"zyncchat-api/services"
	"zyncchat-api/utils"
)

// audioFields are the multipart field names clients upload audio under.
var audioFields = []string{"voice", "audio"}

type VoiceController struct {
	ai            *services.AIService
	maxAudioBytes int64
}

func NewVoiceController(ai *services.AIService, maxAudioBytes int64) *VoiceController {
	return &VoiceController{ai: ai, maxAudioBytes: maxAudioBytes}
}

type ttsRequest struct {
	Text string `json:"text"`
}

// SpeechToText transcribes an uploaded audio file and answers it.
func (vc *VoiceController) SpeechToText(c *gin.Context) {
	// room for multipart framing on top of the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, vc.maxAudioBytes+1<<20)

	fh, err := vc.audioFile(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		_ = c.Error(fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	result, err := vc.ai.SpeechToText(c.Request.Context(), f, fh.Filename)
	if err != nil {
		_ = c.Error(err)
		return
	}

	body := gin.H{"transcript": result.Transcript, "text": result.Text}
	if result.Warning != "" {
		body["warning"] = result.Warning
	}
	utils.SendSuccess(c, "", body)
}

func (vc *VoiceController) audioFile(c *gin.Context) (*multipart.FileHeader, error) {
	var fh *multipart.FileHeader
	for _, field := range audioFields {
		f, err := c.FormFile(field)
		if err == nil {
			fh = f
			break
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, utils.InvalidArgument("Audio file is too large")
		}
	}
	if fh == nil {
		return nil, utils.InvalidArgument("No audio file uploaded")
	}
	if fh.Size > vc.maxAudioBytes {
		return nil, utils.InvalidArgument("Audio file is too large")
	}
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "audio/") {
		return nil, utils.InvalidArgument("Only audio files are allowed")
	}
	return fh, nil
}

func (vc *VoiceController) TextToSpeech(c *gin.Context) {
	var req ttsRequest
	if !bindJSON(c, &req) {
		return
	}

	audio, err := vc.ai.TextToSpeech(c.Request.Context(), req.Text)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Data(http.StatusOK, "audio/mpeg", audio)
}
