package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"pcforge-backend/internal/domain/shared"
	"pcforge-backend/internal/domain/user"
	apperrors "pcforge-backend/internal/errors"
	"pcforge-backend/internal/repository/memory"
	"pcforge-backend/pkg/auth"
)

func newTestService(t *testing.T) (*Service, *memory.Repository, *auth.Service) {
	t.Helper()
	repo := memory.New()
	tokens, err := auth.NewService("test-secret-at-least-32-characters!!", "pcforge", time.Hour)
	require.NoError(t, err)
	return NewService(repo, tokens, zaptest.NewLogger(t)), repo, tokens
}

func registerInput() RegisterInput {
	return RegisterInput{
		Username: "builder",
		Email:    "builder@example.com",
		Password: "correct horse battery",
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, _, tokens := newTestService(t)

	result, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)
	assert.Equal(t, "builder", result.User.Username)
	assert.Equal(t, "builder@example.com", result.User.Email)
	assert.False(t, result.User.IsAdmin)
	assert.NotEqual(t, "correct horse battery", result.User.PasswordHash)

	claims, err := tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID.String(), claims.UserID())
}

func TestRegisterShortPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := registerInput()
	input.Password = "short"
	_, err := svc.Register(context.Background(), input)
	assert.True(t, apperrors.IsValidation(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	input := registerInput()
	input.Username = "other"
	_, err = svc.Register(ctx, input)
	assert.ErrorIs(t, err, shared.ErrEmailTaken)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _, tokens := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	result, err := svc.Login(ctx, "builder@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID.String(), result.User.ID.String())

	claims, err := tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "builder@example.com", claims.Email)
}

// TestLoginMixedCaseEmail: emails are stored lowercased, so the typed
// casing must not matter at login.
func TestLoginMixedCaseEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	input := registerInput()
	input.Email = "Builder@Example.COM"
	registered, err := svc.Register(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, "builder@example.com", registered.User.Email)

	result, err := svc.Login(ctx, "BUILDER@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID.String(), result.User.ID.String())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	_, err = svc.Login(ctx, "builder@example.com", "not the password")
	assert.True(t, apperrors.IsUnauthorized(err))
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "ghost@example.com", "whatever")
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.False(t, shared.IsNotFoundError(err))
}

func TestProfileCounts(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	a, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	other := registerInput()
	other.Username = "fan"
	other.Email = "fan@example.com"
	b, err := svc.Register(ctx, other)
	require.NoError(t, err)

	f, err := user.NewFollow(b.User.ID, a.User.ID)
	require.NoError(t, err)
	require.NoError(t, repo.CreateFollow(ctx, f))

	profile, err := svc.GetProfile(ctx, a.User.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.Followers)
	assert.Zero(t, profile.Following)
}

func TestUpdateBio(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerInput())
	require.NoError(t, err)

	updated, err := svc.UpdateBio(ctx, registered.User.ID, "water cooling enjoyer")
	require.NoError(t, err)
	assert.Equal(t, "water cooling enjoyer", updated.Bio)

	profile, err := svc.GetProfile(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "water cooling enjoyer", profile.User.Bio)
}
