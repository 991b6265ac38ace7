package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/spmb/internal/pkg/apperrors"
)

func TestValidateToken(t *testing.T) {
	svc := NewJWTService(JWTConfig{SecretKey: "secret", TokenIssuer: "sekolah-idp"})

	t.Run("valid token", func(t *testing.T) {
		token, err := svc.GenerateToken("42", "admin", time.Minute)
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)

		require.NoError(t, err)
		assert.Equal(t, "42", claims.Subject)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := svc.GenerateToken("42", "admin", -time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)

		require.ErrorIs(t, err, apperrors.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "other", TokenIssuer: "sekolah-idp"})
		token, err := other.GenerateToken("42", "admin", time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)

		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(JWTConfig{SecretKey: "secret", TokenIssuer: "elsewhere"})
		token, err := other.GenerateToken("42", "admin", time.Minute)
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)

		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.ValidateToken("")
		require.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	})
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken(`"abc.def.ghi"`)
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	_, err = ExtractBearerToken("Basic dXNlcjpwYXNz")
	require.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ExtractBearerToken("")
	require.ErrorIs(t, err, ErrInvalidFormat)
}
