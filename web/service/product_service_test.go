package service

import (
	"fmt"
	"testing"

	"qrpanel/database"
	"qrpanel/database/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductDefaults(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	service := ProductService{}

	product, err := service.CreateProduct(owner.Id, nil, "Coffee Beans",
		decimal.NewFromFloat(249.50), "dark roast", "")
	require.NoError(t, err)

	assert.True(t, product.IsActive)
	assert.Equal(t, model.QRPending, product.QRStatus)
	assert.Empty(t, product.QRCodePath)
	assert.True(t, product.Price.Equal(decimal.NewFromFloat(249.50)))
}

func TestCreateProductValidation(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	service := ProductService{}

	_, err := service.CreateProduct(owner.Id, nil, "", decimal.NewFromInt(10), "", "")
	assert.Error(t, err)

	_, err = service.CreateProduct(owner.Id, nil, "Free Stuff", decimal.Zero, "", "")
	assert.Error(t, err)

	otherCategory := 999
	_, err = service.CreateProduct(owner.Id, &otherCategory, "Tea", decimal.NewFromInt(10), "", "")
	assert.Error(t, err, "category of another user must be rejected")
}

func TestProductOwnership(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	stranger := createTestUser(t, "stranger@example.com")
	service := ProductService{}

	product, err := service.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)

	_, err = service.GetProduct(stranger.Id, product.Id)
	assert.True(t, database.IsNotFound(err))

	err = service.SetActive(stranger.Id, product.Id, false)
	assert.True(t, database.IsNotFound(err))

	err = service.DeleteProduct(stranger.Id, product.Id)
	assert.True(t, database.IsNotFound(err))

	// the owner still sees it untouched
	got, err := service.GetProduct(owner.Id, product.Id)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}

func TestUpdateProductResetsQRStatus(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	service := ProductService{}

	product, err := service.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)

	// simulate the job having rendered the code
	err = database.GetDB().Model(model.Product{}).
		Where("id = ?", product.Id).
		Updates(map[string]any{"qr_status": model.QRReady, "qr_attempts": 2}).Error
	require.NoError(t, err)

	err = service.UpdateProduct(owner.Id, product.Id, nil, "Coffee v2", decimal.NewFromInt(120), "", "")
	require.NoError(t, err)

	got, err := service.GetProduct(owner.Id, product.Id)
	require.NoError(t, err)
	assert.Equal(t, "Coffee v2", got.Name)
	assert.Equal(t, model.QRPending, got.QRStatus)
	assert.Equal(t, 0, got.QRAttempts)
}

func TestGetProductsPaginationAndFilters(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	categoryService := CategoryService{}

	category, err := categoryService.CreateCategory(owner.Id, "Drinks", "", "#3B82F6")
	require.NoError(t, err)

	for i := 0; i < 25; i++ {
		var categoryId *int
		if i%2 == 0 {
			categoryId = &category.Id
		}
		p, err := productService.CreateProduct(owner.Id, categoryId,
			fmt.Sprintf("Product %02d", i), decimal.NewFromInt(int64(i+1)), "", "")
		require.NoError(t, err)
		if i < 5 {
			require.NoError(t, productService.SetActive(owner.Id, p.Id, false))
		}
	}

	rows, total, err := productService.GetProducts(owner.Id, ProductFilter{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, rows, 10)

	rows, _, err = productService.GetProducts(owner.Id, ProductFilter{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, rows, 5)

	_, total, err = productService.GetProducts(owner.Id, ProductFilter{Status: "inactive", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)

	_, total, err = productService.GetProducts(owner.Id, ProductFilter{CategoryId: category.Id, Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 13, total)

	rows, total, err = productService.GetProducts(owner.Id, ProductFilter{Search: "Product 07", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Product 07", rows[0].Name)
}

func TestDeleteProductRemovesScans(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	scanService := ScanService{}

	product, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)

	scanService.TrackScan(product.Id, nil, "10.0.0.1", "agent", "")
	scanService.TrackScan(product.Id, nil, "10.0.0.2", "agent", "")

	err = productService.DeleteProduct(owner.Id, product.Id)
	require.NoError(t, err)

	var scanCount int64
	err = database.GetDB().Model(model.QRScan{}).Where("product_id = ?", product.Id).Count(&scanCount).Error
	require.NoError(t, err)
	assert.EqualValues(t, 0, scanCount)
}

func TestGetPendingQRProducts(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	service := ProductService{}

	for i := 0; i < 3; i++ {
		_, err := service.CreateProduct(owner.Id, nil, fmt.Sprintf("P%d", i), decimal.NewFromInt(1), "", "")
		require.NoError(t, err)
	}

	pending, err := service.GetPendingQRProducts(10)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	pending, err = service.GetPendingQRProducts(2)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}
