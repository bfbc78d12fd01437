package service

import (
	"fmt"
	"sync"
	"testing"

	"qrpanel/database"
	"qrpanel/database/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindActiveProduct(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	categoryService := CategoryService{}
	scanService := ScanService{}

	category, err := categoryService.CreateCategory(owner.Id, "Drinks", "", "#3B82F6")
	require.NoError(t, err)
	product, err := productService.CreateProduct(owner.Id, &category.Id, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)

	view, err := scanService.FindActiveProduct(product.Id)
	require.NoError(t, err)
	assert.Equal(t, "Coffee", view.Name)
	assert.Equal(t, "Drinks", view.CategoryName)
	assert.Equal(t, owner.Name, view.OwnerName)

	// deactivated products resolve like missing ones
	require.NoError(t, productService.SetActive(owner.Id, product.Id, false))
	_, err = scanService.FindActiveProduct(product.Id)
	assert.True(t, database.IsNotFound(err))

	_, err = scanService.FindActiveProduct(99999)
	assert.True(t, database.IsNotFound(err))
}

func TestConcurrentTrackScan(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	productService := ProductService{}
	scanService := ScanService{}

	product, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			scanService.TrackScan(product.Id, nil, fmt.Sprintf("10.0.0.%d", i), "agent", "")
		}(i)
	}
	wg.Wait()

	var count int64
	err = database.GetDB().Model(model.QRScan{}).Where("product_id = ?", product.Id).Count(&count).Error
	require.NoError(t, err)
	assert.EqualValues(t, n, count, "every concurrent scan must produce exactly one row")
}

func TestSourceBreakdownAndActivity(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	scanner := createTestUser(t, "scanner@example.com")
	productService := ProductService{}
	scanService := ScanService{}

	product, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)

	scanService.TrackScan(product.Id, &scanner.Id, "10.0.0.1", "agent", "")
	scanService.TrackScan(product.Id, nil, "10.0.0.2", "agent", "")
	scanService.TrackScan(product.Id, nil, "10.0.0.3", "agent", "")

	breakdown, err := scanService.GetSourceBreakdown(owner.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 1, breakdown.Registered)
	assert.EqualValues(t, 2, breakdown.Anonymous)

	activity, err := scanService.GetRecentActivity(owner.Id, 10)
	require.NoError(t, err)
	require.Len(t, activity, 3)
	names := map[string]int{}
	for _, a := range activity {
		names[a.ScannerName]++
	}
	assert.Equal(t, 2, names["Anonymous"])
	assert.Equal(t, 1, names[scanner.Name])
}

func TestScanStatsAndDailyCounts(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	other := createTestUser(t, "other@example.com")
	productService := ProductService{}
	scanService := ScanService{}

	mine, err := productService.CreateProduct(owner.Id, nil, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)
	theirs, err := productService.CreateProduct(other.Id, nil, "Tea", decimal.NewFromInt(50), "", "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		scanService.TrackScan(mine.Id, nil, "10.0.0.1", "agent", "")
	}
	scanService.TrackScan(theirs.Id, nil, "10.0.0.2", "agent", "")

	stats, err := scanService.GetScanStats(owner.Id)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 3, stats.Today)

	// scope 0 is the system-wide admin view
	stats, err = scanService.GetScanStats(0)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.Total)

	days, err := scanService.GetDailyCounts(owner.Id, 7)
	require.NoError(t, err)
	require.Len(t, days, 7, "missing days must be zero-filled")
	var sum int64
	for _, d := range days {
		sum += d.Count
	}
	assert.EqualValues(t, 3, sum)

	hours, err := scanService.GetHourlyHistogram(owner.Id)
	require.NoError(t, err)
	assert.Len(t, hours, 24)

	top, err := scanService.GetTopProducts(0, 5)
	require.NoError(t, err)
	require.NotEmpty(t, top)
	assert.Equal(t, mine.Id, top[0].ProductId)
	assert.EqualValues(t, 3, top[0].ScanCount)
}
