package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primeboard/primeboard/internal/auth"
	"github.com/primeboard/primeboard/internal/model"
)

func testKey(role model.AgentRole) model.APIKey {
	name := "SpaceCat42"
	return model.APIKey{
		ID:        uuid.New(),
		Prefix:    "pk_test1",
		Label:     "test key",
		Role:      role,
		AgentName: &name,
		CreatedAt: time.Now().UTC(),
	}
}

func TestIssueAndValidateToken(t *testing.T) {
	mgr, err := auth.NewJWTManager("", "", time.Hour)
	require.NoError(t, err)

	key := testKey(model.RoleAgent)
	token, exp, err := mgr.IssueToken(key)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	claims, err := mgr.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, key.ID.String(), claims.Subject)
	assert.Equal(t, "SpaceCat42", claims.AgentName)
	assert.Equal(t, model.RoleAgent, claims.Role)
	require.NotNil(t, claims.APIKeyID)
	assert.Equal(t, key.ID, *claims.APIKeyID)
}

func TestValidateTokenRejectsForeignKey(t *testing.T) {
	mgr1, err := auth.NewJWTManager("", "", time.Hour)
	require.NoError(t, err)
	mgr2, err := auth.NewJWTManager("", "", time.Hour)
	require.NoError(t, err)

	token, _, err := mgr1.IssueToken(testKey(model.RoleReader))
	require.NoError(t, err)

	_, err = mgr2.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	mgr, err := auth.NewJWTManager("", "", -time.Minute)
	require.NoError(t, err)

	token, _, err := mgr.IssueToken(testKey(model.RoleAdmin))
	require.NoError(t, err)

	_, err = mgr.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	mgr, err := auth.NewJWTManager("", "", time.Hour)
	require.NoError(t, err)

	_, err = mgr.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestHashAndVerifyAPIKey(t *testing.T) {
	encoded, err := auth.HashAPIKey("pk_test1_supersecret")
	require.NoError(t, err)

	ok, err := auth.VerifyAPIKey("pk_test1_supersecret", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = auth.VerifyAPIKey("pk_test1_wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = auth.VerifyAPIKey("anything", "malformed")
	assert.Error(t, err)
}
