package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"zyncchat-api/models"
	"zyncchat-api/repositories"
	"zyncchat-api/testutil"
)

func TestReconcile_RestoresMirrorRows(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com")
	carol := testutil.CreateUser(t, db, "Carol", "carol@example.com")

	friends := repositories.NewFriendRepository(db)
	require.NoError(t, friends.AddFriendPair(ctx, alice.ID, bob.ID))
	// one-sided row left behind by an interrupted write
	require.NoError(t, db.Create(&models.Friendship{UserID: carol.ID, FriendID: alice.ID}).Error)

	job := NewFriendshipReconcileJob(friends, "@every 1h", zap.NewNop())

	repaired, err := job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	ok, err := friends.AreFriends(ctx, alice.ID, carol.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	var rows int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&rows).Error)
	assert.EqualValues(t, 4, rows)

	repaired, err = job.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, repaired)
}

func TestReconcile_StartStop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	job := NewFriendshipReconcileJob(repositories.NewFriendRepository(db), "@every 1h", zap.NewNop())

	require.NoError(t, job.Start())
	require.NoError(t, job.Start(), "second start is a no-op")
	job.Stop()
	job.Stop()
}

func TestReconcile_InvalidSchedule(t *testing.T) {
	db := testutil.SetupTestDB(t)
	job := NewFriendshipReconcileJob(repositories.NewFriendRepository(db), "not a schedule", zap.NewNop())

	assert.Error(t, job.Start())
}
