package job

import (
	"os"
	"path/filepath"
	"testing"

	"qrpanel/database"
	"qrpanel/database/model"
	"qrpanel/logger"
	"qrpanel/web/service"

	"github.com/op/go-logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

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

func TestPendingQRJobFillsPendingProducts(t *testing.T) {
	setupTestDB(t)

	owner := &model.User{Name: "Owner", Email: "owner@example.com", Password: "x",
		Role: model.RoleUser, Status: model.StatusApproved}
	require.NoError(t, database.GetDB().Create(owner).Error)

	productService := service.ProductService{}
	p1, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)
	p2, err := productService.CreateProduct(owner.Id, nil, "Tea", decimal.NewFromInt(50), "", "")
	require.NoError(t, err)

	NewPendingQRJob().Run()

	for _, id := range []int{p1.Id, p2.Id} {
		got, err := productService.GetProduct(owner.Id, id)
		require.NoError(t, err)
		assert.Equal(t, model.QRReady, got.QRStatus)
		require.NotEmpty(t, got.QRCodePath)
		_, err = os.Stat(got.QRCodePath)
		assert.NoError(t, err)
	}

	pending, err := productService.GetPendingQRProducts(10)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestPendingQRJobSkipsOverlappingRun(t *testing.T) {
	setupTestDB(t)

	job := NewPendingQRJob()
	job.running.Store(true)

	// with the guard held, Run must return without touching anything
	job.Run()
	assert.True(t, job.running.Load())
}
