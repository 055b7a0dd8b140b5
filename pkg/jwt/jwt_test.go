package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	jwtUtil := NewJWTUtilWithSecret("test-secret", time.Hour)

	token, err := jwtUtil.GenerateToken("user-1", "dana@example.com", "driver")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := jwtUtil.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "dana@example.com", claims.Email)
	assert.Equal(t, "driver", claims.Role)
	assert.Equal(t, "fleet-management", claims.Issuer)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	jwtUtil := NewJWTUtilWithSecret("test-secret", -time.Minute)

	token, err := jwtUtil.GenerateToken("user-1", "dana@example.com", "driver")
	require.NoError(t, err)

	_, err = jwtUtil.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsTampered(t *testing.T) {
	jwtUtil := NewJWTUtilWithSecret("test-secret", time.Hour)

	token, err := jwtUtil.GenerateToken("user-1", "dana@example.com", "driver")
	require.NoError(t, err)

	_, err = jwtUtil.ValidateToken(token + "x")
	assert.Error(t, err)
}

func TestValidateTokenRejectsOtherSecret(t *testing.T) {
	token, err := NewJWTUtilWithSecret("secret-a", time.Hour).GenerateToken("user-1", "dana@example.com", "driver")
	require.NoError(t, err)

	_, err = NewJWTUtilWithSecret("secret-b", time.Hour).ValidateToken(token)
	assert.Error(t, err)
}
