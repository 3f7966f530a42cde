package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"zyncchat-api/models"
	"zyncchat-api/repositories"
	"zyncchat-api/utils"
)

const recommendationLimit = 50

// OnboardingInput carries the onboarding form. Nil optional fields keep
// their stored value.
type OnboardingInput struct {
	NativeLanguage   string
	LearningLanguage string
	FullName         *string
	Bio              *string
	Location         *string
	ProfilePic       *string
}

type ProfileService struct {
	users *repositories.UserRepository
	chat  ChatUserSyncer
}

func NewProfileService(users *repositories.UserRepository, chat ChatUserSyncer) *ProfileService {
	return &ProfileService{users: users, chat: chat}
}

func (s *ProfileService) Me(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("User not found")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// CompleteOnboarding overwrites the profile and marks the user onboarded.
// Calling it again with the same input is a no-op apart from updatedAt.
func (s *ProfileService) CompleteOnboarding(ctx context.Context, userID string, in OnboardingInput) (*models.User, error) {
	if utils.IsBlank(in.NativeLanguage, in.LearningLanguage) {
		return nil, utils.InvalidArgument("Native language and learning language are required")
	}

	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.NativeLanguage = strings.ToLower(strings.TrimSpace(in.NativeLanguage))
	user.LearningLanguage = strings.ToLower(strings.TrimSpace(in.LearningLanguage))
	if in.FullName != nil && strings.TrimSpace(*in.FullName) != "" {
		user.FullName = strings.TrimSpace(*in.FullName)
	}
	if in.Bio != nil {
		user.Bio = strings.TrimSpace(*in.Bio)
	}
	if in.Location != nil {
		user.Location = strings.TrimSpace(*in.Location)
	}
	if in.ProfilePic != nil {
		user.ProfilePic = strings.TrimSpace(*in.ProfilePic)
	}
	user.IsOnboarded = true

	if err := s.users.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save onboarding: %w", err)
	}

	s.chat.UpsertUsers(ctx, user)
	return user, nil
}

// Recommendations lists onboarded users who are not the caller or already friends.
func (s *ProfileService) Recommendations(ctx context.Context, userID string) ([]models.UserSummary, error) {
	users, err := s.users.Recommendations(ctx, userID, recommendationLimit)
	if err != nil {
		return nil, fmt.Errorf("load recommendations: %w", err)
	}
	return users, nil
}
