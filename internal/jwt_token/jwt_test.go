package jwttoken

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "lanewise/pkg/domain-errors"
)

var jwtService = NewJWTService(
	"test-signing-key",
	"test-issuer",
	"test-audience",
)

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := jwtService.GenerateAccessToken("agent-7", RoleAgent, time.Hour)
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-7", claims.AgentID)
	assert.Equal(t, RoleAgent, claims.Role)
	assert.Equal(t, "test-issuer", claims.Issuer)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := jwtService.GenerateAccessToken("agent-7", RoleAgent, -time.Minute)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestWrongKeyRejected(t *testing.T) {
	other := NewJWTService("other-key", "test-issuer", "test-audience")
	token, err := other.GenerateAccessToken("agent-7", RoleAgent, time.Hour)
	require.NoError(t, err)

	_, err = jwtService.ValidateToken(token)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestGarbageTokenRejected(t *testing.T) {
	_, err := jwtService.ValidateToken("not-a-token")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestAdapterExposesIdentity(t *testing.T) {
	token, err := jwtService.GenerateAccessToken("agent-9", RoleAdmin, time.Hour)
	require.NoError(t, err)

	identity, err := NewJWTServiceAdapter(jwtService).ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "agent-9", identity.AgentID)
	assert.Equal(t, RoleAdmin, identity.Role)
}
