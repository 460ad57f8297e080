package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345"

func TestGenerateAccessToken(t *testing.T) {
	t.Run("Successfully generate access token", func(t *testing.T) {
		token, err := GenerateAccessToken(1, []string{"MEMBER"}, testSecret)

		assert.NoError(t, err)
		assert.NotEmpty(t, token)
	})

	t.Run("Fail with empty secret", func(t *testing.T) {
		token, err := GenerateAccessToken(1, []string{"MEMBER"}, "")

		assert.Error(t, err)
		assert.Equal(t, ErrEmptyJWTSecret, err)
		assert.Empty(t, token)
	})

	t.Run("Token contains correct claims", func(t *testing.T) {
		roles := []string{"TRAINER", "MEMBER"}

		token, err := GenerateAccessToken(42, roles, testSecret)
		require.NoError(t, err)

		claims, err := ValidateToken(token, testSecret)
		require.NoError(t, err)

		assert.Equal(t, 42, claims.UserID)
		assert.Equal(t, roles, claims.Roles)
		assert.Equal(t, "access", claims.TokenType)
		assert.Equal(t, jwtIssuer, claims.Issuer)
		assert.Contains(t, claims.Audience, jwtAudience)
		assert.NotNil(t, claims.IssuedAt)
	})
}

func TestValidateToken(t *testing.T) {
	userID := 100
	roles := []string{"ADMIN"}

	t.Run("Fail with empty secret", func(t *testing.T) {
		token, _ := GenerateAccessToken(userID, roles, testSecret)

		claims, err := ValidateToken(token, "")

		assert.Equal(t, ErrEmptyJWTSecret, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with wrong secret", func(t *testing.T) {
		token, _ := GenerateAccessToken(userID, roles, testSecret)

		claims, err := ValidateToken(token, "wrong-secret")

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with invalid token format", func(t *testing.T) {
		claims, err := ValidateToken("invalid.token.format", testSecret)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Fail with expired token", func(t *testing.T) {
		pastTime := time.Now().Add(-1 * time.Hour)

		claims := &JWTClaims{
			UserID:    userID,
			Roles:     roles,
			TokenType: "access",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Audience:  []string{jwtAudience},
				ExpiresAt: jwt.NewNumericDate(pastTime),
				IssuedAt:  jwt.NewNumericDate(pastTime.Add(-15 * time.Minute)),
			},
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, _ := token.SignedString([]byte(testSecret))

		validatedClaims, err := ValidateToken(tokenString, testSecret)

		assert.Equal(t, ErrTokenExpired, err)
		assert.Nil(t, validatedClaims)
	})

	t.Run("Fail with foreign audience", func(t *testing.T) {
		claims := &JWTClaims{
			UserID:    userID,
			TokenType: "access",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    jwtIssuer,
				Audience:  []string{"someone-else"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		tokenString, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))

		_, err := ValidateToken(tokenString, testSecret)
		assert.Error(t, err)
	})
}

func TestTokenExpiration(t *testing.T) {
	token, err := GenerateAccessToken(1, []string{"MEMBER"}, testSecret)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)

	expectedExpiry := time.Now().Add(AccessTokenTTL)
	diff := claims.ExpiresAt.Time.Sub(expectedExpiry).Abs()
	assert.Less(t, diff, 2*time.Second)
}
