package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	tm := NewTokenManager("my_secret_key", time.Minute)

	tokenStr, exp, err := tm.GenerateToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := tm.ParseToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestTokenManager_ParseInvalidSignature(t *testing.T) {
	tm := NewTokenManager("correct_secret", time.Minute)
	forged := NewTokenManager("wrong_secret", time.Minute)

	tokenStr, _, err := tm.GenerateToken("alice")
	require.NoError(t, err)

	claims, err := forged.ParseToken(tokenStr)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestTokenManager_ParseMalformed(t *testing.T) {
	tm := NewTokenManager("secret", time.Minute)

	claims, err := tm.ParseToken("not.a.token")
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestTokenManager_Expiration(t *testing.T) {
	tm := NewTokenManager("secret", 50*time.Millisecond)

	tokenStr, _, err := tm.GenerateToken("alice")
	require.NoError(t, err)

	time.Sleep(60 * time.Millisecond)

	claims, err := tm.ParseToken(tokenStr)
	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	tm := NewTokenManager("secret", 0)

	_, exp, err := tm.GenerateToken("alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), exp, 5*time.Second)
}
