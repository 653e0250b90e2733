package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretKey = "test-secret-key-at-least-32-characters-long"

func newTestTokenService(t *testing.T, accessTTL, refreshTTL time.Duration) TokenService {
	t.Helper()
	svc, err := NewTokenService(accessTTL, refreshTTL, "test-issuer", "test-audience", testSecretKey)
	require.NoError(t, err)
	return svc
}

func TestNewTokenService(t *testing.T) {
	t.Run("RequiresSecretKey", func(t *testing.T) {
		_, err := NewTokenService(time.Hour, 24*time.Hour, "iss", "aud", "")
		require.Error(t, err)
	})

	t.Run("CreatesService", func(t *testing.T) {
		svc := newTestTokenService(t, time.Hour, 24*time.Hour)
		assert.NotNil(t, svc)
	})
}

func TestGenerateAndValidateOperatorTokens(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	accessToken, refreshToken, err := svc.GenerateOperatorTokens(42)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	assert.NotEqual(t, accessToken, refreshToken)

	t.Run("AccessTokenClaims", func(t *testing.T) {
		claims, err := svc.ValidateOperatorToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.OperatorID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	})

	t.Run("RefreshTokenClaims", func(t *testing.T) {
		claims, err := svc.ValidateOperatorToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.OperatorID)
		assert.Equal(t, "refresh", claims.TokenType)
	})

	t.Run("UniqueTokenIDs", func(t *testing.T) {
		secondAccess, _, err := svc.GenerateOperatorTokens(42)
		require.NoError(t, err)

		first, err := svc.ValidateOperatorToken(accessToken)
		require.NoError(t, err)
		second, err := svc.ValidateOperatorToken(secondAccess)
		require.NoError(t, err)
		assert.NotEqual(t, first.TokenID, second.TokenID)
	})
}

func TestValidateOperatorTokenRejections(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	t.Run("GarbageToken", func(t *testing.T) {
		_, err := svc.ValidateOperatorToken("not-a-jwt")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other, err := NewTokenService(time.Hour, 24*time.Hour, "test-issuer", "test-audience",
			"a-completely-different-secret-key-32-chars")
		require.NoError(t, err)

		token, _, err := other.GenerateOperatorTokens(1)
		require.NoError(t, err)

		_, err = svc.ValidateOperatorToken(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		shortLived := newTestTokenService(t, -time.Minute, 24*time.Hour)
		token, _, err := shortLived.GenerateOperatorTokens(1)
		require.NoError(t, err)

		_, err = shortLived.ValidateOperatorToken(token)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		token, _, err := svc.GenerateOperatorTokens(1)
		require.NoError(t, err)

		_, err = svc.ValidateOperatorToken(token + "x")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestRefreshToken(t *testing.T) {
	svc := newTestTokenService(t, time.Hour, 24*time.Hour)

	t.Run("IssuesNewPair", func(t *testing.T) {
		_, refreshToken, err := svc.GenerateOperatorTokens(7)
		require.NoError(t, err)

		newAccess, newRefresh, err := svc.RefreshToken(refreshToken)
		require.NoError(t, err)

		claims, err := svc.ValidateOperatorToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.OperatorID)
		assert.Equal(t, "access", claims.TokenType)

		refreshClaims, err := svc.ValidateOperatorToken(newRefresh)
		require.NoError(t, err)
		assert.Equal(t, "refresh", refreshClaims.TokenType)
	})

	t.Run("AccessTokenCannotRefresh", func(t *testing.T) {
		accessToken, _, err := svc.GenerateOperatorTokens(7)
		require.NoError(t, err)

		_, _, err = svc.RefreshToken(accessToken)
		require.Error(t, err)
	})
}
