package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"zyncchat-api/config"
	"zyncchat-api/models"
	"zyncchat-api/repositories"
	"zyncchat-api/utils"
)

const (
	conversationListLimit = 50
	noTutorReply          = "Sorry, no response"
	cloudPlatformScope    = "https://www.googleapis.com/auth/cloud-platform"
)

// TextPredictor completes a prompt.
type TextPredictor interface {
	Predict(ctx context.Context, prompt string) (string, error)
}

// VertexPredictor calls a Vertex AI publisher model's predict endpoint.
type VertexPredictor struct {
	vendor   *VendorClient
	endpoint string
}

// NewVertexPredictor authenticates with the service account file in cfg, or
// application default credentials when none is set. An explicit client skips
// credential discovery.
func NewVertexPredictor(ctx context.Context, cfg config.AIConfig, client *http.Client) (*VertexPredictor, error) {
	if cfg.ProjectID == "" {
		return nil, errors.New("vertex: project id is not set")
	}
	if client == nil {
		creds, err := findCredentials(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		client = oauth2.NewClient(ctx, creds.TokenSource)
	}

	base := cfg.VertexBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s-aiplatform.googleapis.com", cfg.Location)
	}
	endpoint := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		strings.TrimRight(base, "/"), cfg.ProjectID, cfg.Location, cfg.TutorModel)

	return &VertexPredictor{
		vendor:   NewVendorClient("vertex", client, cfg.RequestTimeout),
		endpoint: endpoint,
	}, nil
}

func findCredentials(ctx context.Context, file string) (*google.Credentials, error) {
	if file == "" {
		creds, err := google.FindDefaultCredentials(ctx, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("vertex: default credentials: %w", err)
		}
		return creds, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("vertex: read credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
	if err != nil {
		return nil, fmt.Errorf("vertex: parse credentials: %w", err)
	}
	return creds, nil
}

func (p *VertexPredictor) Predict(ctx context.Context, prompt string) (string, error) {
	res, err := p.vendor.PostJSON(ctx, p.endpoint, nil, map[string]any{
		"instances": []map[string]string{{"content": prompt}},
	})
	if err != nil {
		return "", err
	}
	return res.Get("predictions.0.content").String(), nil
}

type AskInput struct {
	Message        string
	ConversationID string
	Language       string
	Topic          string
}

type TutorService struct {
	conversations *repositories.ConversationRepository
	predictor     TextPredictor
}

// NewTutorService accepts a nil predictor; asking then fails as not configured.
func NewTutorService(conversations *repositories.ConversationRepository, predictor TextPredictor) *TutorService {
	return &TutorService{conversations: conversations, predictor: predictor}
}

func BuildTutorPrompt(language, topic string) string {
	prompt := "You are an AI tutor. Explain clearly and simply with examples."
	if language != "" && !strings.EqualFold(language, "auto") {
		prompt += fmt.Sprintf(" Answer in %s.", language)
	}
	if topic != "" {
		prompt += fmt.Sprintf(" Focus on: %s.", topic)
	}
	return prompt
}

// Ask appends the user's message to a conversation, asks the model and
// stores the reply. userID is nil for anonymous callers.
func (s *TutorService) Ask(ctx context.Context, userID *string, in AskInput) (*models.Conversation, string, error) {
	if utils.IsBlank(in.Message) {
		return nil, "", utils.InvalidArgument("Message is required")
	}
	if s.predictor == nil {
		return nil, "", notConfigured("AI tutor")
	}
	if in.Language == "" {
		in.Language = "auto"
	}

	conv, err := s.loadOrCreate(ctx, userID, in)
	if err != nil {
		return nil, "", err
	}

	meta := models.JSONMap{"language": in.Language}
	if in.Topic != "" {
		meta["topic"] = in.Topic
	}
	userMsg := &models.ConversationMessage{
		ConversationID: conv.ID,
		Sender:         models.MessageSenderUser,
		Text:           in.Message,
		Meta:           meta,
	}
	if err := s.conversations.AppendMessages(ctx, userMsg); err != nil {
		return nil, "", fmt.Errorf("store tutor question: %w", err)
	}
	conv.Messages = append(conv.Messages, *userMsg)

	reply, err := s.predictor.Predict(ctx, BuildTutorPrompt(in.Language, in.Topic)+"\nUser: "+in.Message)
	if err != nil {
		return nil, "", err
	}
	if reply == "" {
		reply = noTutorReply
	}

	assistantMsg := &models.ConversationMessage{
		ConversationID: conv.ID,
		Sender:         models.MessageSenderAssistant,
		Text:           reply,
	}
	if err := s.conversations.AppendMessages(ctx, assistantMsg); err != nil {
		return nil, "", fmt.Errorf("store tutor reply: %w", err)
	}
	conv.Messages = append(conv.Messages, *assistantMsg)

	return conv, reply, nil
}

// loadOrCreate resumes an existing conversation or starts a new one when the
// id is empty or unknown.
func (s *TutorService) loadOrCreate(ctx context.Context, userID *string, in AskInput) (*models.Conversation, error) {
	if in.ConversationID != "" {
		conv, err := s.Conversation(ctx, userID, in.ConversationID)
		if err == nil {
			return conv, nil
		}
		if !utils.IsKind(err, utils.KindNotFound) {
			return nil, err
		}
	}

	conv := &models.Conversation{
		ID:       uuid.NewString(),
		UserID:   userID,
		Language: in.Language,
		Topic:    in.Topic,
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	conv.Messages = []models.ConversationMessage{}
	return conv, nil
}

func (s *TutorService) Conversations(ctx context.Context, userID *string) ([]models.Conversation, error) {
	convs, err := s.conversations.ListRecent(ctx, userID, conversationListLimit)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

// Conversation loads one conversation the caller may see.
func (s *TutorService) Conversation(ctx context.Context, userID *string, id string) (*models.Conversation, error) {
	conv, err := s.conversations.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("Conversation not found")
		}
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	caller := ""
	if userID != nil {
		caller = *userID
	}
	if !conv.OwnedBy(caller) {
		return nil, utils.Forbidden("Not authorized to access this conversation")
	}
	return conv, nil
}

// Clear deletes a conversation. Unknown ids succeed.
func (s *TutorService) Clear(ctx context.Context, userID *string, id string) error {
	if _, err := s.Conversation(ctx, userID, id); err != nil {
		if utils.IsKind(err, utils.KindNotFound) {
			return nil
		}
		return err
	}
	if err := s.conversations.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}
