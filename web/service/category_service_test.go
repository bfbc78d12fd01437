package service

import (
	"testing"

	"qrpanel/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategoryDefaultColor(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	service := CategoryService{}

	category, err := service.CreateCategory(owner.Id, "Drinks", "hot and cold", "")
	require.NoError(t, err)
	assert.NotEmpty(t, category.Color, "a color must be assigned when none is given")

	category, err = service.CreateCategory(owner.Id, "Snacks", "", "#123456")
	require.NoError(t, err)
	assert.Equal(t, "#123456", category.Color)

	_, err = service.CreateCategory(owner.Id, "", "", "")
	assert.Error(t, err)
}

func TestDeleteCategoryWithProducts(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	categoryService := CategoryService{}
	productService := ProductService{}

	category, err := categoryService.CreateCategory(owner.Id, "Drinks", "", "")
	require.NoError(t, err)

	product, err := productService.CreateProduct(owner.Id, &category.Id, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)

	err = categoryService.DeleteCategory(owner.Id, category.Id)
	assert.ErrorIs(t, err, ErrCategoryHasProducts)

	// still listed, with its product count
	rows, err := categoryService.GetCategories(owner.Id)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1, rows[0].ProductCount)

	require.NoError(t, productService.DeleteProduct(owner.Id, product.Id))
	require.NoError(t, categoryService.DeleteCategory(owner.Id, category.Id))
}

func TestCategoryOwnership(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	stranger := createTestUser(t, "stranger@example.com")
	service := CategoryService{}

	category, err := service.CreateCategory(owner.Id, "Drinks", "", "")
	require.NoError(t, err)

	_, err = service.GetCategory(stranger.Id, category.Id)
	assert.True(t, database.IsNotFound(err))

	err = service.UpdateCategory(stranger.Id, category.Id, "Hijacked", "", "")
	assert.True(t, database.IsNotFound(err))

	err = service.DeleteCategory(stranger.Id, category.Id)
	assert.True(t, database.IsNotFound(err))
}
