package service

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportJSONMatchesDatabase(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	categoryService := CategoryService{}
	scanService := ScanService{}
	exportService := ExportService{}

	category, err := categoryService.CreateCategory(owner.Id, "Drinks", "", "")
	require.NoError(t, err)
	product, err := productService.CreateProduct(owner.Id, &category.Id, "Coffee", decimal.NewFromFloat(99.90), "", "")
	require.NoError(t, err)
	scanService.TrackScan(product.Id, nil, "10.0.0.1", "agent", "")

	raw, err := exportService.ExportJSON(owner.Id)
	require.NoError(t, err)

	var data ExportData
	require.NoError(t, json.Unmarshal(raw, &data))

	assert.Equal(t, owner.Email, data.User.Email)
	require.Len(t, data.Categories, 1)
	require.Len(t, data.Products, 1)
	require.Len(t, data.Scans, 1)
	assert.Equal(t, "Coffee", data.Products[0].Name)
	assert.True(t, data.Products[0].Price.Equal(decimal.NewFromFloat(99.90)))

	// the password hash must never appear in an export
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), owner.Password)
}

func TestExportCSV(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	scanService := ScanService{}
	exportService := ExportService{}

	product, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromFloat(99.90), "", "")
	require.NoError(t, err)
	scanService.TrackScan(product.Id, nil, "10.0.0.1", "agent", "")
	scanService.TrackScan(product.Id, nil, "10.0.0.2", "agent", "")

	raw, err := exportService.ExportCSV(owner.Id)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(raw)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header plus one product row")

	assert.Equal(t, []string{"id", "name", "category", "price", "active", "scans", "created_at"}, records[0])
	row := records[1]
	assert.Equal(t, "Coffee", row[1])
	assert.Equal(t, "99.90", row[3])
	assert.Equal(t, "yes", row[4])
	assert.Equal(t, "2", row[5])
	assert.True(t, strings.HasPrefix(row[6], "20"))
}
