package repositories

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"zyncchat-api/models"
	"zyncchat-api/testutil"
)

func TestFriendRepository_AreFriendsLogsNothing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	var buf bytes.Buffer
	quiet := db.Session(&gorm.Session{
		Logger: logger.New(log.New(&buf, "", 0), logger.Config{LogLevel: logger.Warn}),
	})
	repo := NewFriendRepository(quiet)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com")

	ok, err := repo.AreFriends(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, buf.String())

	require.NoError(t, repo.AddFriendPair(ctx, alice.ID, bob.ID))
	ok, err = repo.AreFriends(ctx, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFriendRepository_AcceptedIncoming(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewFriendRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com")
	require.NoError(t, db.Create(&models.FriendRequest{
		ID:          "req-1",
		SenderID:    alice.ID,
		RecipientID: bob.ID,
		Status:      models.FriendRequestStatusAccepted,
	}).Error)

	got, err := repo.AcceptedIncoming(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].Sender)
	assert.Equal(t, "Alice", got[0].Sender.FullName)

	got, err = repo.AcceptedIncoming(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
