package service

import (
	"time"

	"qrpanel/database"
	"qrpanel/database/model"
	"qrpanel/logger"

	"gorm.io/gorm"
)

// ScanService records QR scans and serves the analytics aggregations. Scan
// rows are append-only; every aggregate is computed from the log at query
// time.
type ScanService struct{}

// ScanView is what the public scan page shows: the product plus its
// category and owner display fields. Only active products resolve.
type ScanView struct {
	model.Product
	CategoryName  string `json:"categoryName"`
	CategoryColor string `json:"categoryColor"`
	OwnerName     string `json:"ownerName"`
}

// FindActiveProduct resolves a scanned product id. Inactive and missing
// products both come back as not found, so the scan page cannot be used to
// probe which ids exist.
func (s *ScanService) FindActiveProduct(productId int) (*ScanView, error) {
	db := database.GetDB()
	view := &ScanView{}
	err := db.Model(model.Product{}).
		Select(`products.*,
			COALESCE(categories.name, '') AS category_name,
			COALESCE(categories.color, '') AS category_color,
			COALESCE(users.name, '') AS owner_name`).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Joins("LEFT JOIN users ON users.id = products.user_id").
		Where("products.id = ? AND products.is_active = ?", productId, true).
		First(view).Error
	if err != nil {
		return nil, err
	}
	return view, nil
}

// TrackScan appends one row to the scan log. userId is nil for anonymous
// visitors. Tracking failures are logged, never surfaced to the scanner;
// the product page still renders.
func (s *ScanService) TrackScan(productId int, userId *int, ipAddress, userAgent, location string) {
	db := database.GetDB()
	scan := &model.QRScan{
		ProductId: productId,
		UserId:    userId,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Location:  location,
		ScannedAt: time.Now(),
	}
	if err := db.Create(scan).Error; err != nil {
		logger.Warning("track scan:", err)
	}
}

// ScanStats are the headline counters on the analytics page.
type ScanStats struct {
	Total     int64 `json:"total"`
	Today     int64 `json:"today"`
	ThisWeek  int64 `json:"thisWeek"`
	ThisMonth int64 `json:"thisMonth"`
}

// ownerScope limits a qr_scans query to products of one owner. userId 0
// means no scoping (admin system-wide view).
func (s *ScanService) ownerScope(userId int) *gorm.DB {
	db := database.GetDB()
	q := db.Model(model.QRScan{})
	if userId > 0 {
		q = q.Joins("JOIN products ON products.id = qr_scans.product_id").
			Where("products.user_id = ?", userId)
	}
	return q
}

func (s *ScanService) GetScanStats(userId int) (*ScanStats, error) {
	stats := &ScanStats{}
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	type window struct {
		since time.Time
		dst   *int64
	}
	windows := []window{
		{time.Time{}, &stats.Total},
		{startOfDay, &stats.Today},
		{startOfDay.AddDate(0, 0, -int(now.Weekday())), &stats.ThisWeek},
		{time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), &stats.ThisMonth},
	}
	for _, w := range windows {
		q := s.ownerScope(userId)
		if !w.since.IsZero() {
			q = q.Where("qr_scans.scanned_at >= ?", w.since)
		}
		if err := q.Count(w.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

// DailyCount is one point on the scans-over-time chart.
type DailyCount struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// GetDailyCounts returns scan totals per calendar day for the last `days`
// days. Days without scans are filled with zero so charts stay continuous.
func (s *ScanService) GetDailyCounts(userId, days int) ([]DailyCount, error) {
	if days <= 0 {
		days = 30
	}
	since := time.Now().AddDate(0, 0, -days+1)
	since = time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())

	rows := make([]DailyCount, 0)
	err := s.ownerScope(userId).
		Select("strftime('%Y-%m-%d', qr_scans.scanned_at) AS day, COUNT(*) AS count").
		Where("qr_scans.scanned_at >= ?", since).
		Group("day").
		Order("day ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]int64, len(rows))
	for _, r := range rows {
		byDay[r.Day] = r.Count
	}
	filled := make([]DailyCount, 0, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		filled = append(filled, DailyCount{Day: day, Count: byDay[day]})
	}
	return filled, nil
}

// HourlyCount is one bar of the hour-of-day histogram, hour 0..23.
type HourlyCount struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

func (s *ScanService) GetHourlyHistogram(userId int) ([]HourlyCount, error) {
	rows := make([]HourlyCount, 0)
	err := s.ownerScope(userId).
		Select("CAST(strftime('%H', qr_scans.scanned_at) AS INTEGER) AS hour, COUNT(*) AS count").
		Group("hour").
		Order("hour ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byHour := make(map[int]int64, len(rows))
	for _, r := range rows {
		byHour[r.Hour] = r.Count
	}
	filled := make([]HourlyCount, 0, 24)
	for h := 0; h < 24; h++ {
		filled = append(filled, HourlyCount{Hour: h, Count: byHour[h]})
	}
	return filled, nil
}

// TopProduct is one row of the most-scanned-products table.
type TopProduct struct {
	ProductId   int    `json:"productId"`
	ProductName string `json:"productName"`
	OwnerName   string `json:"ownerName"`
	ScanCount   int64  `json:"scanCount"`
}

func (s *ScanService) GetTopProducts(userId, limit int) ([]TopProduct, error) {
	if limit <= 0 {
		limit = 10
	}
	db := database.GetDB()
	q := db.Model(model.QRScan{}).
		Select(`products.id AS product_id, products.name AS product_name,
			COALESCE(users.name, '') AS owner_name, COUNT(*) AS scan_count`).
		Joins("JOIN products ON products.id = qr_scans.product_id").
		Joins("LEFT JOIN users ON users.id = products.user_id").
		Group("products.id").
		Order("scan_count DESC").
		Limit(limit)
	if userId > 0 {
		q = q.Where("products.user_id = ?", userId)
	}

	rows := make([]TopProduct, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SourceBreakdown splits scans into logged-in versus anonymous visitors.
type SourceBreakdown struct {
	Registered int64 `json:"registered"`
	Anonymous  int64 `json:"anonymous"`
}

func (s *ScanService) GetSourceBreakdown(userId int) (*SourceBreakdown, error) {
	breakdown := &SourceBreakdown{}
	if err := s.ownerScope(userId).
		Where("qr_scans.user_id IS NOT NULL").
		Count(&breakdown.Registered).Error; err != nil {
		return nil, err
	}
	if err := s.ownerScope(userId).
		Where("qr_scans.user_id IS NULL").
		Count(&breakdown.Anonymous).Error; err != nil {
		return nil, err
	}
	return breakdown, nil
}

// ScanActivity is one row of the recent-activity feed. ScannerName is
// "Anonymous" when the scan had no logged-in user.
type ScanActivity struct {
	Id          int64     `json:"id"`
	ProductId   int       `json:"productId"`
	ProductName string    `json:"productName"`
	ScannerName string    `json:"scannerName"`
	IPAddress   string    `json:"ipAddress"`
	Location    string    `json:"location"`
	ScannedAt   time.Time `json:"scannedAt"`
}

func (s *ScanService) GetRecentActivity(userId, limit int) ([]ScanActivity, error) {
	if limit <= 0 {
		limit = 20
	}
	db := database.GetDB()
	q := db.Model(model.QRScan{}).
		Select(`qr_scans.id, qr_scans.product_id, products.name AS product_name,
			COALESCE(scanner.name, 'Anonymous') AS scanner_name,
			qr_scans.ip_address, qr_scans.location, qr_scans.scanned_at`).
		Joins("JOIN products ON products.id = qr_scans.product_id").
		Joins("LEFT JOIN users AS scanner ON scanner.id = qr_scans.user_id").
		Order("qr_scans.scanned_at DESC").
		Limit(limit)
	if userId > 0 {
		q = q.Where("products.user_id = ?", userId)
	}

	rows := make([]ScanActivity, 0)
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SystemStats are the admin dashboard totals.
type SystemStats struct {
	Users    int64 `json:"users"`
	Pending  int64 `json:"pending"`
	Products int64 `json:"products"`
	Scans    int64 `json:"scans"`
}

func (s *ScanService) GetSystemStats() (*SystemStats, error) {
	db := database.GetDB()
	stats := &SystemStats{}

	if err := db.Model(model.User{}).Where("role = ?", model.RoleUser).Count(&stats.Users).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.User{}).
		Where("role = ? AND status = ?", model.RoleUser, model.StatusPending).
		Count(&stats.Pending).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.Product{}).Count(&stats.Products).Error; err != nil {
		return nil, err
	}
	if err := db.Model(model.QRScan{}).Count(&stats.Scans).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
