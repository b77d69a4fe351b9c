package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewManager("test-secret", 15, 72)

	token, err := m.GenerateAccessToken(42, "admin")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "admin", claims.Role)

	id, err := claims.IntUserID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestRefreshTokenHasRefreshType(t *testing.T) {
	m := NewManager("test-secret", 15, 72)

	token, err := m.GenerateRefreshToken(42)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.Type)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", 15, 72).GenerateAccessToken(1, "user")
	require.NoError(t, err)

	_, err = NewManager("secret-b", 15, 72).ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	m := NewManager("test-secret", 15, 72)

	_, err := m.ValidateToken("not-a-token")
	assert.Error(t, err)
}
