package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"zyncchat-api/models"
	"zyncchat-api/repositories"
	"zyncchat-api/utils"
)

const resetTokenBytes = 20

type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// AuthResult is a user together with a freshly issued session.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

type AuthService struct {
	users     *repositories.UserRepository
	sessions  *SessionService
	chat      ChatUserSyncer
	mailer    PasswordResetMailer
	resetTTL  time.Duration
	clientURL string
	logger    *zap.Logger
	now       func() time.Time
}

func NewAuthService(
	users *repositories.UserRepository,
	sessions *SessionService,
	chat ChatUserSyncer,
	mailer PasswordResetMailer,
	resetTTL time.Duration,
	clientURL string,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		chat:      chat,
		mailer:    mailer,
		resetTTL:  resetTTL,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if utils.IsBlank(in.FullName, in.Email, in.Password) {
		return nil, utils.InvalidArgument("All fields are required")
	}
	email := utils.NormalizeEmail(in.Email)
	if !utils.IsValidEmail(email) {
		return nil, utils.InvalidArgument("Invalid email format")
	}
	if !utils.IsValidPassword(in.Password) {
		return nil, utils.InvalidArgument(fmt.Sprintf("Password must be at least %d characters", utils.MinPasswordLength))
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, utils.Conflict("Email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		ID:         uuid.NewString(),
		FullName:   strings.TrimSpace(in.FullName),
		Email:      email,
		Password:   string(hash),
		ProfilePic: randomAvatar(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.Conflict("Email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.chat.UpsertUsers(ctx, user)
	return s.startSession(user)
}

// Login never reveals whether the email exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if utils.IsBlank(email, password) {
		return nil, utils.InvalidArgument("All fields are required")
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, utils.ErrInvalidCredentials
	}

	return s.startSession(user)
}

// Logout revokes the presented token, if any.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}

func (s *AuthService) startSession(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.sessions.Issue(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ForgotPassword stores a hashed reset token and mails the raw one. Unknown
// emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	if utils.IsBlank(email) {
		return utils.InvalidArgument("Email is required")
	}

	user, err := s.users.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	raw, err := utils.GenerateSecureToken(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	hashed := utils.HashToken(raw)
	expires := s.now().Add(s.resetTTL)
	user.ResetPasswordToken = &hashed
	user.ResetPasswordExpires = &expires
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.clientURL, raw)
	if err := s.mailer.SendPasswordResetEmail(user.Email, user.FullName, resetURL); err != nil {
		user.ResetPasswordToken = nil
		user.ResetPasswordExpires = nil
		if saveErr := s.users.Save(ctx, user); saveErr != nil {
			s.logger.Warn("could not clear reset token", zap.String("user_id", user.ID), zap.Error(saveErr))
		}
		return utils.Internal("Email could not be sent", err)
	}
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	if utils.IsBlank(token) {
		return utils.InvalidArgument("Invalid or expired token")
	}
	if !utils.IsValidPassword(password) {
		return utils.InvalidArgument(fmt.Sprintf("Password must be at least %d characters", utils.MinPasswordLength))
	}

	user, err := s.users.FindByResetToken(ctx, utils.HashToken(token), s.now())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.InvalidArgument("Invalid or expired token")
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = string(hash)
	user.ResetPasswordToken = nil
	user.ResetPasswordExpires = nil
	if err := s.users.Save(ctx, user); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

func randomAvatar() string {
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.IntN(100)+1)
}

func (s *AuthService) SessionTTL() time.Duration {
	return s.sessions.TTL()
}
