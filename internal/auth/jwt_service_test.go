package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestJWTService(t *testing.T, clock func() time.Time) *JWTService {
	t.Helper()

	svc, err := NewJWTService(JWTConfig{
		Secret:         "test-secret",
		Issuer:         "users-system",
		AccessTokenTTL: time.Minute,
		Clock:          clock,
	})
	require.NoError(t, err)
	return svc
}

func TestJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestJWTService(t, nil)

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: 42, Email: "a@example.com", Role: "USER"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	require.Equal(t, uint(42), claims.UserID)
	require.Equal(t, "a@example.com", claims.Email)
	require.Equal(t, "USER", claims.Role)
	require.Equal(t, "42", claims.Subject)
	require.Equal(t, "users-system", claims.Issuer)
}

func TestGenerateAccessTokenRequiresUserID(t *testing.T) {
	svc := newTestJWTService(t, nil)

	_, err := svc.GenerateAccessToken(AccessTokenInput{})
	require.Error(t, err)
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	svc := newTestJWTService(t, func() time.Time { return clock() })

	token, err := svc.GenerateAccessToken(AccessTokenInput{UserID: 7})
	require.NoError(t, err)

	clock = func() time.Time { return now.Add(2 * time.Minute) }

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateAccessTokenRejectsWrongSecret(t *testing.T) {
	issuer := newTestJWTService(t, nil)
	other, err := NewJWTService(JWTConfig{Secret: "other-secret", Issuer: "users-system"})
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(AccessTokenInput{UserID: 7})
	require.NoError(t, err)

	_, err = other.ValidateAccessToken(token)
	require.Error(t, err)
}

func TestValidateAccessTokenRejectsWrongIssuer(t *testing.T) {
	issuer, err := NewJWTService(JWTConfig{Secret: "test-secret", Issuer: "someone-else"})
	require.NoError(t, err)
	svc := newTestJWTService(t, nil)

	token, err := issuer.GenerateAccessToken(AccessTokenInput{UserID: 7})
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.Error(t, err)
}
