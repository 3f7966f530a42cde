package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"zyncchat-api/config"
	"zyncchat-api/utils"
)

const (
	chatbotMaxTokens   = 512
	chatbotTemperature = 0.7
	noChatbotReply     = "No response"
	noVoiceReply       = "No reply generated"
)

var targetLanguageRe = regexp.MustCompile(`^[a-z]{2,3}(-[a-z]{2,4})?$`)

// AIService proxies the AI features to their vendors. Each call hits exactly
// one endpoint and is never retried.
type AIService struct {
	cfg         config.AIConfig
	huggingFace *VendorClient
	gemini      *VendorClient
	speech      *VendorClient
	voiceRSS    *VendorClient
	logger      *zap.Logger
}

func NewAIService(cfg config.AIConfig, client *http.Client, logger *zap.Logger) *AIService {
	return &AIService{
		cfg:         cfg,
		huggingFace: NewVendorClient("huggingface", client, cfg.RequestTimeout),
		gemini:      NewVendorClient("gemini", client, cfg.RequestTimeout),
		speech:      NewVendorClient("transcription", client, cfg.STTTimeout),
		voiceRSS:    NewVendorClient("voicerss", client, cfg.RequestTimeout),
		logger:      logger,
	}
}

func notConfigured(feature string) *utils.AppError {
	return &utils.AppError{Kind: utils.KindInternal, Message: feature + " is not configured"}
}

// Chat sends one user message to the chat completion router.
func (s *AIService) Chat(ctx context.Context, message string) (string, error) {
	if utils.IsBlank(message) {
		return "", utils.InvalidArgument("Message is required")
	}
	if s.cfg.HFToken == "" {
		return "", notConfigured("Chatbot")
	}

	res, err := s.huggingFace.PostJSON(ctx, strings.TrimRight(s.cfg.HFRouterURL, "/")+"/chat/completions", bearer(s.cfg.HFToken), map[string]any{
		"model": s.cfg.HFChatModel,
		"messages": []map[string]string{
			{"role": "user", "content": message},
		},
		"max_tokens":  chatbotMaxTokens,
		"temperature": chatbotTemperature,
	})
	if err != nil {
		return "", err
	}

	if reply := res.Get("choices.0.message.content").String(); reply != "" {
		return reply, nil
	}
	if reply := res.Get("choices.0.text").String(); reply != "" {
		return reply, nil
	}
	return noChatbotReply, nil
}

// Translate translates English text into target. The original message is
// returned when the model produces nothing.
func (s *AIService) Translate(ctx context.Context, message, target string) (string, error) {
	if utils.IsBlank(message, target) {
		return "", utils.InvalidArgument("Message and target language are required")
	}
	target = strings.ToLower(strings.TrimSpace(target))
	if !targetLanguageRe.MatchString(target) {
		return "", utils.InvalidArgument("Unsupported target language")
	}
	if s.cfg.HuggingFaceAPIKey == "" {
		return "", notConfigured("Translation")
	}

	endpoint := fmt.Sprintf("%s/models/Helsinki-NLP/opus-mt-en-%s", strings.TrimRight(s.cfg.HFInferenceURL, "/"), target)
	res, err := s.huggingFace.PostJSON(ctx, endpoint, bearer(s.cfg.HuggingFaceAPIKey), map[string]string{"inputs": message})
	if err != nil {
		return "", err
	}
	if out := res.Get("0.translation_text").String(); out != "" {
		return out, nil
	}
	return message, nil
}

// GenerateFromPrompt runs a prompt through the Gemini text endpoint used by the
// text-to-image feature.
func (s *AIService) GenerateFromPrompt(ctx context.Context, prompt string) (string, error) {
	if utils.IsBlank(prompt) {
		return "", utils.InvalidArgument("Prompt is required")
	}
	if s.cfg.GoogleAPIKey == "" {
		return "", notConfigured("Image generation")
	}
	out, err := s.generateContent(ctx, s.cfg.GoogleAPIKey, prompt)
	if err != nil {
		return "", err
	}
	if out == "" {
		return noChatbotReply, nil
	}
	return out, nil
}

// Reply answers free text with Gemini. Used by speech-to-text and the voice socket.
func (s *AIService) Reply(ctx context.Context, text string) (string, error) {
	if s.cfg.GeminiAPIKey == "" {
		return "", notConfigured("Voice replies")
	}
	out, err := s.generateContent(ctx, s.cfg.GeminiAPIKey, text)
	if err != nil {
		return "", err
	}
	if out == "" {
		return noVoiceReply, nil
	}
	return out, nil
}

func (s *AIService) ReplyEnabled() bool {
	return s.cfg.GeminiAPIKey != ""
}

func (s *AIService) generateContent(ctx context.Context, apiKey, text string) (string, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(s.cfg.GeminiBaseURL, "/"), s.cfg.GeminiModel, url.QueryEscape(apiKey))

	res, err := s.gemini.PostJSON(ctx, endpoint, nil, map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]string{{"text": text}}},
		},
	})
	if err != nil {
		return "", err
	}
	return res.Get("candidates.0.content.parts.0.text").String(), nil
}

// SpeechResult is the outcome of a speech-to-text call. Text echoes the
// transcript when reply generation is not configured.
type SpeechResult struct {
	Transcript string `json:"transcript"`
	Text       string `json:"text"`
	Warning    string `json:"warning,omitempty"`
}

// SpeechToText transcribes audio and, when configured, answers the transcript.
func (s *AIService) SpeechToText(ctx context.Context, audio io.Reader, filename string) (*SpeechResult, error) {
	transcript, err := s.transcribe(ctx, audio, filename)
	if err != nil {
		return nil, err
	}

	result := &SpeechResult{Transcript: transcript}
	if !s.ReplyEnabled() {
		result.Text = transcript
		result.Warning = "Reply generation is not configured"
		return result, nil
	}

	reply, err := s.Reply(ctx, transcript)
	if err != nil {
		return nil, err
	}
	result.Text = reply
	return result, nil
}

func (s *AIService) transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	if s.cfg.OpenAIAPIKey == "" {
		return "", notConfigured("Speech recognition")
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", s.cfg.WhisperModel); err != nil {
		return "", err
	}
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, audio); err != nil {
		return "", fmt.Errorf("buffer audio: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(s.cfg.OpenAIBaseURL, "/")+"/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+s.cfg.OpenAIAPIKey)

	res, err := s.speech.DoJSON(ctx, req)
	if err != nil {
		return "", err
	}
	if text := res.Get("text").String(); text != "" {
		return text, nil
	}
	return "Could not transcribe", nil
}

// TextToSpeech returns MP3 audio for text.
func (s *AIService) TextToSpeech(ctx context.Context, text string) ([]byte, error) {
	if utils.IsBlank(text) {
		return nil, utils.InvalidArgument("Text is required")
	}
	if s.cfg.VoiceRSSAPIKey == "" {
		return nil, notConfigured("Text to speech")
	}

	q := url.Values{}
	q.Set("key", s.cfg.VoiceRSSAPIKey)
	q.Set("hl", "en-us")
	q.Set("src", text)
	q.Set("c", "MP3")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.cfg.VoiceRSSURL, "/")+"/?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	audio, header, err := s.voiceRSS.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	// the vendor reports failures as 200 text bodies starting with ERROR
	if !strings.HasPrefix(header.Get("Content-Type"), "audio/") && bytes.HasPrefix(audio, []byte("ERROR")) {
		return nil, utils.Upstream("voicerss returned an error", vendorDetail(http.StatusOK, audio), nil)
	}
	return audio, nil
}
