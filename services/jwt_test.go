package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	pair, err := svc.IssuePlayToken("play-1", "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3600), pair.ExpiresIn)

	claims, err := svc.VerifyPlayToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "play-1", claims.PlayID)
	assert.Equal(t, "p1", claims.PlayerCode)

	_, err = NewJWTService("other", time.Hour).VerifyPlayToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("secret", -time.Minute)
	pair, err := svc.IssuePlayToken("play-1", "p1")
	require.NoError(t, err)

	_, err = svc.VerifyPlayToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestJWTService_ExtractTokenFromHeader(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)

	tok, err := svc.ExtractTokenFromHeader("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = svc.ExtractTokenFromHeader("")
	assert.Error(t, err)
	_, err = svc.ExtractTokenFromHeader("Basic abc")
	assert.Error(t, err)
}
