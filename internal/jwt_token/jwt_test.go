package jwttoken

import (
	"testing"
	"time"

	gwErrors "fleetgate/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tokenService = NewService(
	"test-signing-key",
	"test-issuer",
)
var actorEmail = "dispatcher@fleet.example"
var sessionID = uuid.New()
var expiresIn = time.Hour

func Test_GenerateSessionToken(t *testing.T) {
	token, err := tokenService.GenerateSessionToken(actorEmail, sessionID, expiresIn)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	claims, err := tokenService.ValidateToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, actorEmail, claims.ActorEmail)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.WithinDuration(t, time.Now().Add(expiresIn), claims.ExpiresAt.Time, time.Minute)
}

func Test_ValidateToken_InvalidToken(t *testing.T) {
	_, err := tokenService.ValidateToken("invalid-token-string")
	require.Error(t, err)
	assert.Equal(t, gwErrors.CodeUnauthorized, gwErrors.CodeOf(err))
}

func Test_ValidateToken_ExpiredToken(t *testing.T) {
	expiresIn := -time.Hour

	token, err := tokenService.GenerateSessionToken(actorEmail, sessionID, expiresIn)
	require.NoError(t, err)

	_, err = tokenService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, gwErrors.CodeUnauthorized, gwErrors.CodeOf(err))
	assert.Contains(t, err.Error(), "expired")
}

func Test_ValidateToken_WrongKey(t *testing.T) {
	other := NewService("another-signing-key", "test-issuer")
	token, err := other.GenerateSessionToken(actorEmail, sessionID, expiresIn)
	require.NoError(t, err)

	_, err = tokenService.ValidateToken(token)
	require.Error(t, err)
	assert.Equal(t, gwErrors.CodeUnauthorized, gwErrors.CodeOf(err))
}

func Test_ExtractSessionIDFromToken(t *testing.T) {
	token, err := tokenService.GenerateSessionToken(actorEmail, sessionID, expiresIn)
	require.NoError(t, err)

	got, err := tokenService.ExtractSessionIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, sessionID, got)
}
