package service

import (
	"os"
	"path/filepath"
	"testing"

	"qrpanel/config"
	"qrpanel/database/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRCode(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	qrService := QRService{}

	product, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromFloat(1234.50), "dark roast", "")
	require.NoError(t, err)

	require.NoError(t, qrService.Generate(product))

	got, err := productService.GetProduct(owner.Id, product.Id)
	require.NoError(t, err)
	assert.Equal(t, model.QRReady, got.QRStatus)
	require.NotEmpty(t, got.QRCodePath)

	info, err := os.Stat(got.QRCodePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
	assert.Regexp(t, `qr_\d+_\d+\.png$`, got.QRCodePath)
}

func TestGenerateReplacesOldFile(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	qrService := QRService{}

	product, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)

	// plant a stale raster and point the product at it
	require.NoError(t, os.MkdirAll(config.GetQRCodeFolder(), 0o755))
	stale := filepath.Join(config.GetQRCodeFolder(), "qr_0_0.png")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))
	product.QRCodePath = stale

	require.NoError(t, qrService.Generate(product))

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "the stale raster must be removed after the new one is written")

	got, err := productService.GetProduct(owner.Id, product.Id)
	require.NoError(t, err)
	assert.NotEqual(t, stale, got.QRCodePath)
	_, err = os.Stat(got.QRCodePath)
	assert.NoError(t, err)
}

func TestRecordFailureParksAfterRetries(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	qrService := QRService{}

	product, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)

	cause := os.ErrPermission
	for i := 0; i < maxQRAttempts; i++ {
		got, err := productService.GetProduct(owner.Id, product.Id)
		require.NoError(t, err)
		require.NoError(t, qrService.RecordFailure(got, cause))
	}

	got, err := productService.GetProduct(owner.Id, product.Id)
	require.NoError(t, err)
	assert.Equal(t, model.QRFailed, got.QRStatus)
	assert.Equal(t, maxQRAttempts, got.QRAttempts)

	// a failed product is no longer picked up by the job
	pending, err := productService.GetPendingQRProducts(10)
	require.NoError(t, err)
	assert.Empty(t, pending)

	// manual regeneration puts it back in the queue
	require.NoError(t, qrService.Regenerate(owner.Id, product.Id))
	pending, err = productService.GetPendingQRProducts(10)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSweepOrphans(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	qrService := QRService{}

	product, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)
	require.NoError(t, qrService.Generate(product))

	orphan := filepath.Join(config.GetQRCodeFolder(), "qr_999_1.png")
	require.NoError(t, os.WriteFile(orphan, []byte("orphan"), 0o644))

	removed, err := qrService.SweepOrphans()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err))

	got, err := productService.GetProduct(owner.Id, product.Id)
	require.NoError(t, err)
	_, err = os.Stat(got.QRCodePath)
	assert.NoError(t, err, "referenced rasters must survive the sweep")
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "₱1,234.50", FormatPrice(decimal.NewFromFloat(1234.5)))
	assert.Equal(t, "₱99.00", FormatPrice(decimal.NewFromInt(99)))
}
