package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"zyncchat-api/models"
	"zyncchat-api/repositories"
	"zyncchat-api/testutil"
)

const testSecret = "test-secret"

type recordingChat struct {
	mu      sync.Mutex
	upserts []string
}

func (r *recordingChat) UpsertUsers(_ context.Context, users ...*models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range users {
		r.upserts = append(r.upserts, u.ID)
	}
}

func (r *recordingChat) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.upserts...)
}

type recordingMailer struct {
	to       string
	resetURL string
	err      error
}

func (m *recordingMailer) SendPasswordResetEmail(email, _ string, resetURL string) error {
	m.to = email
	m.resetURL = resetURL
	return m.err
}

type testEnv struct {
	db       *gorm.DB
	users    *repositories.UserRepository
	friends  *repositories.FriendRepository
	sessions *SessionService
	chat     *recordingChat
	mailer   *recordingMailer
	auth     *AuthService
	profile  *ProfileService
	friend   *FriendService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.SetupTestDB(t)
	users := repositories.NewUserRepository(db)
	friends := repositories.NewFriendRepository(db)
	sessions := NewSessionService(testSecret, time.Hour, testutil.SetupTestCache(t), users)
	chat := &recordingChat{}
	mailer := &recordingMailer{}
	logger := zap.NewNop()

	return &testEnv{
		db:       db,
		users:    users,
		friends:  friends,
		sessions: sessions,
		chat:     chat,
		mailer:   mailer,
		auth:     NewAuthService(users, sessions, chat, mailer, 10*time.Minute, "http://localhost:5173/", logger),
		profile:  NewProfileService(users, chat),
		friend:   NewFriendService(db, users, friends, chat, logger),
	}
}
