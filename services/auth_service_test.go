package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zyncchat-api/utils"
)

func assertKind(t *testing.T, err error, kind utils.ErrorKind, message string) {
	t.Helper()
	appErr, ok := utils.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, kind, appErr.Kind)
	assert.Equal(t, message, appErr.Message)
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterInput{FullName: "Alice", Email: "Alice@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEqual(t, "secret1", res.User.Password)
	assert.True(t, strings.HasPrefix(res.User.ProfilePic, "https://avatar.iran.liara.run/public/"))
	assert.False(t, res.User.IsOnboarded)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, []string{res.User.ID}, env.chat.ids())

	login, err := env.auth.Login(ctx, "ALICE@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)

	user, _, err := env.sessions.Verify(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, user.ID)
}

func TestAuth_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		in      RegisterInput
		message string
	}{
		{"missing password", RegisterInput{FullName: "A", Email: "a@example.com"}, "All fields are required"},
		{"missing name", RegisterInput{Email: "a@example.com", Password: "secret1"}, "All fields are required"},
		{"bad email", RegisterInput{FullName: "A", Email: "not-an-email", Password: "secret1"}, "Invalid email format"},
		{"short password", RegisterInput{FullName: "A", Email: "a@example.com", Password: "12345"}, "Password must be at least 6 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, tt.in)
			assertKind(t, err, utils.KindInvalidArgument, tt.message)
		})
	}
}

func TestAuth_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, RegisterInput{FullName: "Other", Email: "ALICE@example.com", Password: "secret2"})
	assertKind(t, err, utils.KindConflict, "Email already registered")
}

func TestAuth_LoginDoesNotRevealAccounts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPassword := env.auth.Login(ctx, "alice@example.com", "wrong-password")
	_, unknownEmail := env.auth.Login(ctx, "nobody@example.com", "secret1")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
	assertKind(t, wrongPassword, utils.KindInvalidCredentials, "Invalid credentials")
}

func TestAuth_LogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := env.auth.Register(ctx, RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, res.Token))
	_, _, err = env.sessions.Verify(ctx, res.Token)
	assertKind(t, err, utils.KindUnauthorized, "Unauthorized: Token revoked")

	assert.NoError(t, env.auth.Logout(ctx, ""))
}

func TestAuth_PasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, env.auth.ForgotPassword(ctx, "alice@example.com"))
	assert.Equal(t, "alice@example.com", env.mailer.to)

	prefix := "http://localhost:5173/reset-password/"
	require.True(t, strings.HasPrefix(env.mailer.resetURL, prefix), env.mailer.resetURL)
	token := strings.TrimPrefix(env.mailer.resetURL, prefix)
	assert.Len(t, token, resetTokenBytes*2)

	stored, err := env.users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.ResetPasswordToken)
	assert.NotEqual(t, token, *stored.ResetPasswordToken, "only the hash is stored")

	require.NoError(t, env.auth.ResetPassword(ctx, token, "newsecret"))

	_, err = env.auth.Login(ctx, "alice@example.com", "newsecret")
	assert.NoError(t, err)
	_, err = env.auth.Login(ctx, "alice@example.com", "secret1")
	assert.Error(t, err)

	// single use
	err = env.auth.ResetPassword(ctx, token, "another1")
	assertKind(t, err, utils.KindInvalidArgument, "Invalid or expired token")
}

func TestAuth_PasswordResetExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, env.auth.ForgotPassword(ctx, "alice@example.com"))
	token := env.mailer.resetURL[strings.LastIndex(env.mailer.resetURL, "/")+1:]

	env.auth.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	err = env.auth.ResetPassword(ctx, token, "newsecret")
	assertKind(t, err, utils.KindInvalidArgument, "Invalid or expired token")
}

func TestAuth_ForgotPasswordUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.auth.ForgotPassword(context.Background(), "nobody@example.com"))
	assert.Empty(t, env.mailer.to)
}

func TestAuth_ForgotPasswordMailFailureClearsToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterInput{FullName: "Alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	env.mailer.err = errors.New("smtp down")
	err = env.auth.ForgotPassword(ctx, "alice@example.com")
	assertKind(t, err, utils.KindInternal, "Email could not be sent")

	stored, err := env.users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, stored.ResetPasswordToken)
}
