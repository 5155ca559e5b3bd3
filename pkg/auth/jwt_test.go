package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndValidateToken(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SecretKey: "test-secret",
		Issuer:    "ideaboard-test",
	})
	require.NoError(t, err)

	validator, err := NewJWTValidator(JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "ideaboard-test",
	})
	require.NoError(t, err)

	token, err := issuer.IssueToken("user-1", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestValidateTokenBearerPrefix(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{SecretKey: "test-secret"})
	require.NoError(t, err)
	validator, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	token, err := issuer.IssueToken("user-1", "alice")
	require.NoError(t, err)

	claims, err := validator.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{SecretKey: "secret-a"})
	require.NoError(t, err)
	validator, err := NewJWTValidator(JWTConfig{SecretKey: "secret-b"})
	require.NoError(t, err)

	token, err := issuer.IssueToken("user-1", "alice")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenWrongIssuer(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{SecretKey: "test-secret", Issuer: "other-service"})
	require.NoError(t, err)
	validator, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret", Issuer: "ideaboard"})
	require.NoError(t, err)

	token, err := issuer.IssueToken("user-1", "alice")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestValidateTokenExpired(t *testing.T) {
	issuer, err := NewTokenIssuer(TokenIssuerConfig{
		SecretKey: "test-secret",
		TTL:       -time.Minute,
	})
	require.NoError(t, err)
	validator, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	token, err := issuer.IssueToken("user-1", "alice")
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenMissing(t *testing.T) {
	validator, err := NewJWTValidator(JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	_, err = validator.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = validator.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)

	assert.NoError(t, ComparePassword(hash, "correct horse battery"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong password"), ErrPasswordMismatch)
}
