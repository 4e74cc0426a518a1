package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sceneyard/sceneyard/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret          = "test-secret-key-for-jwt-testing"
	testWrongSecret     = "wrong-secret-key-for-jwt-testing"
	testTokenDuration   = 1 * time.Hour
	testExpiredDuration = -1 * time.Hour
)

func createTestUser(role models.Role) *models.User {
	return &models.User{
		ID:    uuid.New(),
		Email: "test@example.com",
		Name:  "Test User",
		Role:  role,
	}
}

func TestGenerateToken_Success(t *testing.T) {
	user := createTestUser(models.RoleUser)

	token, err := GenerateToken(user, testSecret, testTokenDuration)

	require.NoError(t, err, "GenerateToken should not return error for valid input")
	assert.NotEmpty(t, token, "Token should not be empty")
	assert.Contains(t, token, ".", "JWT token should contain dots")
}

func TestGenerateToken_CarriesRoleAndID(t *testing.T) {
	roles := []models.Role{models.RoleUser, models.RoleAdmin}

	for _, role := range roles {
		t.Run(string(role), func(t *testing.T) {
			user := createTestUser(role)

			token, err := GenerateToken(user, testSecret, testTokenDuration)
			require.NoError(t, err)

			claims, err := ValidateToken(token, testSecret)
			require.NoError(t, err)
			assert.Equal(t, role, claims.Role, "Token should contain correct role")
			assert.Equal(t, user.ID, claims.UserID, "Token should contain correct user id")
			assert.Equal(t, user.Email, claims.Email)
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	user := createTestUser(models.RoleUser)

	token, err := GenerateToken(user, testSecret, testTokenDuration)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testWrongSecret)

	assert.Error(t, err, "Token signed with a different secret should fail validation")
	assert.Nil(t, claims)
}

func TestValidateToken_Expired(t *testing.T) {
	user := createTestUser(models.RoleUser)

	token, err := GenerateToken(user, testSecret, testExpiredDuration)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestValidateToken_Garbage(t *testing.T) {
	claims, err := ValidateToken("not-a-jwt", testSecret)

	assert.Error(t, err)
	assert.Nil(t, claims)
}
