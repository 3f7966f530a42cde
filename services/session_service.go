package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"zyncchat-api/cache"
	"zyncchat-api/models"
	"zyncchat-api/repositories"
	"zyncchat-api/utils"
)

const revokedKeyPrefix = "revoked:"

// SessionClaims is the signed session payload. ID (jti) keys the revocation list.
type SessionClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// SessionService issues and verifies stateless session tokens and keeps a
// revocation list for tokens logged out before they expire.
type SessionService struct {
	secret  []byte
	ttl     time.Duration
	revoked cache.Cache
	users   *repositories.UserRepository
	now     func() time.Time
}

func NewSessionService(secret string, ttl time.Duration, revoked cache.Cache, users *repositories.UserRepository) *SessionService {
	return &SessionService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoked: revoked,
		users:   users,
		now:     time.Now,
	}
}

func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for userID that expires after the configured TTL.
func (s *SessionService) Issue(userID string) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expiresAt, nil
}

// Parse checks signature, algorithm and expiry.
func (s *SessionService) Parse(tokenStr string) (*SessionClaims, error) {
	if tokenStr == "" {
		return nil, utils.Unauthorized("Unauthorized: No token provided")
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.Unauthorized("Unauthorized: Token expired")
		}
		return nil, utils.Unauthorized("Unauthorized: Invalid token")
	}
	if claims.UserID == "" {
		return nil, utils.Unauthorized("Unauthorized: Invalid token payload")
	}
	return claims, nil
}

// Verify resolves a token to its user, rejecting revoked tokens and users
// that no longer exist.
func (s *SessionService) Verify(ctx context.Context, tokenStr string) (*models.User, *SessionClaims, error) {
	claims, err := s.Parse(tokenStr)
	if err != nil {
		return nil, nil, err
	}

	if claims.ID != "" {
		revoked, err := s.revoked.Exists(ctx, revokedKeyPrefix+claims.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("check token revocation: %w", err)
		}
		if revoked {
			return nil, nil, utils.Unauthorized("Unauthorized: Token revoked")
		}
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, utils.Unauthorized("Unauthorized: User not found")
		}
		return nil, nil, fmt.Errorf("load session user: %w", err)
	}
	return user, claims, nil
}

// Revoke blacklists a token until it would have expired anyway. Invalid or
// expired tokens need no entry and are ignored.
func (s *SessionService) Revoke(ctx context.Context, tokenStr string) error {
	claims, err := s.Parse(tokenStr)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.revoked.Set(ctx, revokedKeyPrefix+claims.ID, claims.UserID, ttl)
}
