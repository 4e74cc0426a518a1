package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sceneyard/sceneyard/internal/models"
)

// The in-memory database must use a shared cache: every pooled connection
// has to see the same schema and rows, not a fresh empty database.
func TestDatabaseSharedAcrossConnections(t *testing.T) {
	testDB := SetupTestDatabase(t)
	defer testDB.Teardown(t)

	sqlDB, err := testDB.DB.DB()
	require.NoError(t, err)

	// Pin one connection so the shared database outlives the pool churn,
	// then force every gorm operation onto a fresh connection.
	conn, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)
	defer conn.Close()
	sqlDB.SetMaxIdleConns(0)

	user, err := CreateTestUser(testDB.DB, "pooled@example.com", models.RoleUser)
	require.NoError(t, err)

	var found models.User
	require.NoError(t, testDB.DB.First(&found, "id = ?", user.ID).Error)
	require.Equal(t, "pooled@example.com", found.Email)
}
