package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	svc, err := NewService("test-secret-at-least-32-characters!!", "pcforge", ttl)
	require.NoError(t, err)
	return svc
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestService(t, time.Hour)

	token, err := svc.GenerateToken("user-123", "builder@example.com", false)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "builder@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, "pcforge", claims.Issuer)
}

func TestValidateAcceptsBearerPrefix(t *testing.T) {
	svc := newTestService(t, time.Hour)
	token, err := svc.GenerateToken("user-123", "a@b.com", true)
	require.NoError(t, err)

	claims, err := svc.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := newTestService(t, time.Hour)
	svc.ttl = -time.Minute

	token, err := svc.GenerateToken("user-123", "a@b.com", false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	svc := newTestService(t, time.Hour)
	other, err := NewService("another-secret-also-32-characters!!!", "pcforge", time.Hour)
	require.NoError(t, err)

	token, err := other.GenerateToken("user-123", "a@b.com", false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsWrongIssuer(t *testing.T) {
	svc := newTestService(t, time.Hour)
	other, err := NewService("test-secret-at-least-32-characters!!", "someone-else", time.Hour)
	require.NoError(t, err)

	token, err := other.GenerateToken("user-123", "a@b.com", false)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestValidateRejectsEmpty(t *testing.T) {
	svc := newTestService(t, time.Hour)
	_, err := svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService("", "pcforge", time.Hour)
	assert.Error(t, err)
}

func TestContextRoundTrip(t *testing.T) {
	claims := &Claims{Email: "a@b.com"}
	ctx := WithClaims(context.Background(), claims)

	got, err := ClaimsFromContext(ctx)
	require.NoError(t, err)
	assert.Same(t, claims, got)

	_, err = ClaimsFromContext(context.Background())
	assert.ErrorIs(t, err, ErrMissingToken)
}
