package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zyncchat-api/models"
	"zyncchat-api/testutil"
	"zyncchat-api/utils"
)

func strPtr(s string) *string { return &s }

func TestProfile_CompleteOnboarding(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	pic := res.User.ProfilePic

	in := OnboardingInput{NativeLanguage: "English", LearningLanguage: " Spanish ", Bio: strPtr("hi")}
	user, err := env.profile.CompleteOnboarding(ctx, res.User.ID, in)
	require.NoError(t, err)
	assert.True(t, user.IsOnboarded)
	assert.Equal(t, "english", user.NativeLanguage)
	assert.Equal(t, "spanish", user.LearningLanguage)
	assert.Equal(t, "hi", user.Bio)
	assert.Equal(t, pic, user.ProfilePic, "absent fields are kept")

	again, err := env.profile.CompleteOnboarding(ctx, res.User.ID, in)
	require.NoError(t, err)
	assert.Equal(t, user.NativeLanguage, again.NativeLanguage)
	assert.Equal(t, user.LearningLanguage, again.LearningLanguage)
	assert.Equal(t, user.Bio, again.Bio)
	assert.True(t, again.IsOnboarded)
}

func TestProfile_OnboardingValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")

	_, err := env.profile.CompleteOnboarding(ctx, alice.ID, OnboardingInput{NativeLanguage: "english"})
	assertKind(t, err, utils.KindInvalidArgument, "Native language and learning language are required")

	_, err = env.profile.CompleteOnboarding(ctx, "missing", OnboardingInput{NativeLanguage: "a", LearningLanguage: "b"})
	assertKind(t, err, utils.KindNotFound, "User not found")
}

func TestProfile_RecommendationsExcludeSelfFriendsAndNewUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, env.db, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, env.db, "Bob", "bob@example.com")
	carol := testutil.CreateUser(t, env.db, "Carol", "carol@example.com")
	dave := testutil.CreateUser(t, env.db, "Dave", "dave@example.com")
	require.NoError(t, env.db.Model(&models.User{}).Where("id = ?", dave.ID).Update("is_onboarded", false).Error)

	require.NoError(t, env.friends.AddFriendPair(ctx, alice.ID, bob.ID))

	recs, err := env.profile.Recommendations(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, carol.ID, recs[0].ID)
}
