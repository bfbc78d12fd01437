package service

import (
	"path/filepath"
	"testing"

	"qrpanel/database"
	"qrpanel/database/model"
	"qrpanel/logger"

	"github.com/op/go-logging"
	"github.com/stretchr/testify/require"
)

// setupTestDB opens a fresh sqlite database in a temp dir and points the
// asset and log folders there so generated files are cleaned up with the
// test.
func setupTestDB(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("QRPANEL_ASSET_FOLDER", filepath.Join(dir, "assets"))
	t.Setenv("QRPANEL_LOG_FOLDER", dir)
	logger.InitLogger(logging.DEBUG)

	err := database.InitDB(filepath.Join(dir, "test.db"))
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, err := database.GetDB().DB()
		if err == nil {
			sqlDB.Close()
		}
	})
}

// createTestUser inserts an approved user and returns it.
func createTestUser(t *testing.T, email string) *model.User {
	t.Helper()
	user := &model.User{
		Name:     "Test User",
		Email:    email,
		Password: "x",
		Role:     model.RoleUser,
		Status:   model.StatusApproved,
	}
	err := database.GetDB().Create(user).Error
	require.NoError(t, err)
	return user
}
