package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"zyncchat-api/config"
	"zyncchat-api/utils"
)

func newVendorServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func testAIConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		HFToken:           "hf-token",
		HFRouterURL:       baseURL,
		HFChatModel:       "test-model",
		HuggingFaceAPIKey: "hf-key",
		HFInferenceURL:    baseURL,
		GoogleAPIKey:      "google-key",
		GeminiAPIKey:      "gemini-key",
		GeminiBaseURL:     baseURL,
		GeminiModel:       "gemini-test",
		OpenAIAPIKey:      "openai-key",
		OpenAIBaseURL:     baseURL,
		WhisperModel:      "whisper-1",
		VoiceRSSAPIKey:    "voicerss-key",
		VoiceRSSURL:       baseURL,
		RequestTimeout:    5 * time.Second,
		STTTimeout:        5 * time.Second,
	}
}

func TestAI_Chat(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "test-model", body["model"])
		assert.EqualValues(t, 512, body["max_tokens"])

		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"Hola!"}}]}`)
	})
	ai := NewAIService(testAIConfig(srv.URL), srv.Client(), zap.NewNop())

	reply, err := ai.Chat(context.Background(), "Hello")
	require.NoError(t, err)
	assert.Equal(t, "Hola!", reply)
}

func TestAI_ChatFallbacks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"text choice", `{"choices":[{"text":"plain"}]}`, "plain"},
		{"empty", `{"choices":[]}`, "No response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newVendorServer(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			ai := NewAIService(testAIConfig(srv.URL), srv.Client(), zap.NewNop())

			reply, err := ai.Chat(context.Background(), "Hello")
			require.NoError(t, err)
			assert.Equal(t, tt.want, reply)
		})
	}
}

func TestAI_ChatUpstreamError(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error":"overloaded"}`)
	})
	ai := NewAIService(testAIConfig(srv.URL), srv.Client(), zap.NewNop())

	_, err := ai.Chat(context.Background(), "Hello")
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, utils.KindUpstream, appErr.Kind)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status())

	detail, ok := appErr.Detail.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, detail["status"])
}

func TestAI_ChatInvalidJSON(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>gateway</html>")
	})
	ai := NewAIService(testAIConfig(srv.URL), srv.Client(), zap.NewNop())

	_, err := ai.Chat(context.Background(), "Hello")
	assertKind(t, err, utils.KindUpstream, "huggingface returned an invalid response")
}

func TestAI_ChatValidation(t *testing.T) {
	ai := NewAIService(config.AIConfig{}, nil, zap.NewNop())

	_, err := ai.Chat(context.Background(), "  ")
	assertKind(t, err, utils.KindInvalidArgument, "Message is required")

	_, err = ai.Chat(context.Background(), "hi")
	assertKind(t, err, utils.KindInternal, "Chatbot is not configured")
}

func TestAI_Translate(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/Helsinki-NLP/opus-mt-en-es", r.URL.Path)
		_, _ = io.WriteString(w, `[{"translation_text":"Hola mundo"}]`)
	})
	ai := NewAIService(testAIConfig(srv.URL), srv.Client(), zap.NewNop())

	out, err := ai.Translate(context.Background(), "Hello world", "ES")
	require.NoError(t, err)
	assert.Equal(t, "Hola mundo", out)
}

func TestAI_TranslateFallsBackToInput(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	ai := NewAIService(testAIConfig(srv.URL), srv.Client(), zap.NewNop())

	out, err := ai.Translate(context.Background(), "Hello world", "fr")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestAI_TranslateValidation(t *testing.T) {
	ai := NewAIService(testAIConfig("http://unused"), nil, zap.NewNop())

	_, err := ai.Translate(context.Background(), "hello", "")
	assertKind(t, err, utils.KindInvalidArgument, "Message and target language are required")

	_, err = ai.Translate(context.Background(), "hello", "../../admin")
	assertKind(t, err, utils.KindInvalidArgument, "Unsupported target language")
}

func TestAI_GenerateFromPrompt(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:generateContent", r.URL.Path)
		assert.Equal(t, "google-key", r.URL.Query().Get("key"))
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"a red fox"}]}}]}`)
	})
	ai := NewAIService(testAIConfig(srv.URL), srv.Client(), zap.NewNop())

	out, err := ai.GenerateFromPrompt(context.Background(), "fox")
	require.NoError(t, err)
	assert.Equal(t, "a red fox", out)

	_, err = ai.GenerateFromPrompt(context.Background(), "")
	assertKind(t, err, utils.KindInvalidArgument, "Prompt is required")
}

func TestAI_SpeechToText(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/audio/transcriptions":
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "whisper-1", r.FormValue("model"))
			if f, _, err := r.FormFile("file"); assert.NoError(t, err) {
				data, _ := io.ReadAll(f)
				assert.Equal(t, "RIFF", string(data))
			}
			_, _ = io.WriteString(w, `{"text":"how are you"}`)
		default:
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"fine, thanks"}]}}]}`)
		}
	})
	ai := NewAIService(testAIConfig(srv.URL), srv.Client(), zap.NewNop())

	res, err := ai.SpeechToText(context.Background(), bytes.NewBufferString("RIFF"), "clip.wav")
	require.NoError(t, err)
	assert.Equal(t, "how are you", res.Transcript)
	assert.Equal(t, "fine, thanks", res.Text)
	assert.Empty(t, res.Warning)
}

func TestAI_SpeechToTextWithoutReplies(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"text":"hello"}`)
	})
	cfg := testAIConfig(srv.URL)
	cfg.GeminiAPIKey = ""
	ai := NewAIService(cfg, srv.Client(), zap.NewNop())

	res, err := ai.SpeechToText(context.Background(), bytes.NewBufferString("RIFF"), "clip.wav")
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Transcript)
	assert.Equal(t, "hello", res.Text)
	assert.NotEmpty(t, res.Warning)
}

func TestAI_TextToSpeech(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "voicerss-key", r.URL.Query().Get("key"))
		assert.Equal(t, "MP3", r.URL.Query().Get("c"))
		if r.URL.Query().Get("src") == "fail" {
			_, _ = io.WriteString(w, "ERROR: The API key is not available!")
			return
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte{0xff, 0xfb, 0x90})
	})
	ai := NewAIService(testAIConfig(srv.URL), srv.Client(), zap.NewNop())

	audio, err := ai.TextToSpeech(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfb, 0x90}, audio)

	_, err = ai.TextToSpeech(context.Background(), "fail")
	assertKind(t, err, utils.KindUpstream, "voicerss returned an error")

	_, err = ai.TextToSpeech(context.Background(), "")
	assertKind(t, err, utils.KindInvalidArgument, "Text is required")
}

func TestVendorClient_Timeout(t *testing.T) {
	srv := newVendorServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	vendor := NewVendorClient("slow", srv.Client(), 50*time.Millisecond)

	_, err := vendor.PostJSON(context.Background(), srv.URL, nil, map[string]string{})
	assertKind(t, err, utils.KindUpstream, "slow request failed")
}
