package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret!"))
}

func TestAccessTokenClaims(t *testing.T) {
	at, err := NewAccessToken("unit-secret", 42, "CUSTOMER", 15)
	require.NoError(t, err)
	require.NotEmpty(t, at.Token)

	tok, err := jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		require.IsType(t, &jwt.SigningMethodHMAC{}, tk.Method)
		return []byte("unit-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, tok.Valid)

	claims := tok.Claims.(jwt.MapClaims)
	assert.Equal(t, float64(42), claims["sub"])
	assert.Equal(t, "CUSTOMER", claims["role"])
	assert.Equal(t, float64(at.Exp.Unix()), claims["exp"])
}

func TestAccessTokenRejectsWrongSecret(t *testing.T) {
	at, err := NewAccessToken("secret-a", 1, "ORGANIZER", 15)
	require.NoError(t, err)

	_, err = jwt.Parse(at.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("secret-b"), nil
	})
	require.Error(t, err)
}

func TestRefreshTokenShape(t *testing.T) {
	r1, err := NewRefreshToken(7)
	require.NoError(t, err)
	r2, err := NewRefreshToken(7)
	require.NoError(t, err)

	assert.Len(t, r1.Raw, 96) // 48 random bytes hex encoded
	assert.NotEqual(t, r1.Raw, r2.Raw)
	assert.Len(t, HashRefreshRaw(r1.Raw), 64)
	assert.Equal(t, HashRefreshRaw(r1.Raw), HashRefreshRaw(r1.Raw))
	assert.NotEqual(t, HashRefreshRaw(r1.Raw), HashRefreshRaw(r2.Raw))
}
