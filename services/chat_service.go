package services

import (
	"context"
	"net/url"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"zyncchat-api/config"
	"zyncchat-api/models"
	"zyncchat-api/utils"
)

// ChatUserSyncer mirrors local users into the hosted chat vendor.
type ChatUserSyncer interface {
	UpsertUsers(ctx context.Context, users ...*models.User)
}

// ChatService issues client tokens for the hosted chat vendor and keeps its
// user directory in sync. Sync failures are logged, never returned.
type ChatService struct {
	cfg    config.ChatConfig
	vendor *VendorClient
	logger *zap.Logger
}

func NewChatService(cfg config.ChatConfig, vendor *VendorClient, logger *zap.Logger) *ChatService {
	return &ChatService{cfg: cfg, vendor: vendor, logger: logger}
}

var errChatNotConfigured = &utils.AppError{Kind: utils.KindInternal, Message: "Chat service is not configured"}

// Token returns a client token scoped to userID.
func (s *ChatService) Token(userID string) (string, error) {
	if !s.cfg.Enabled() {
		return "", errChatNotConfigured
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": userID}).
		SignedString([]byte(s.cfg.APISecret))
}

func (s *ChatService) serverToken() (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"server": true}).
		SignedString([]byte(s.cfg.APISecret))
}

func (s *ChatService) UpsertUsers(ctx context.Context, users ...*models.User) {
	if !s.cfg.Enabled() || len(users) == 0 {
		return
	}

	token, err := s.serverToken()
	if err != nil {
		s.logger.Warn("chat: sign server token", zap.Error(err))
		return
	}

	payload := map[string]any{}
	for _, u := range users {
		payload[u.ID] = map[string]any{
			"id":    u.ID,
			"name":  u.FullName,
			"image": u.ProfilePic,
		}
	}

	endpoint := strings.TrimRight(s.cfg.BaseURL, "/") + "/users?api_key=" + url.QueryEscape(s.cfg.APIKey)
	headers := map[string]string{
		"Authorization":    token,
		"stream-auth-type": "jwt",
	}
	if _, err := s.vendor.PostJSON(ctx, endpoint, headers, map[string]any{"users": payload}); err != nil {
		s.logger.Warn("chat: upsert users failed", zap.Int("count", len(users)), zap.Error(err))
	}
}
