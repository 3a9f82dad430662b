package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientTokenRoundtrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateToken("11111111-2222-3333-4444-555555555555")
	require.NoError(t, err)

	subject, role, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", subject)
	assert.Equal(t, RoleClient, role)
}

func TestAdminTokenRoundtrip(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateAdminToken("admin")
	require.NoError(t, err)

	subject, role, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", subject)
	assert.Equal(t, RoleAdmin, role)
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := NewJWTService("secret-a").GenerateToken("client")
	require.NoError(t, err)

	_, _, err = NewJWTService("secret-b").ExtractClaims(token)
	assert.Error(t, err)
}

func TestTokenGarbage(t *testing.T) {
	svc := NewJWTService("test-secret")

	_, _, err := svc.ExtractClaims("not.a.token")
	assert.Error(t, err)

	_, _, err = svc.ExtractClaims("")
	assert.Error(t, err)
}
