package service

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"

	"qrpanel/database"
	"qrpanel/database/model"

	json "github.com/goccy/go-json"
)

// ExportService assembles a user's full data set for download. The password
// hash never leaves the database: model.User marshals it with json:"-".
type ExportService struct{}

// ExportData is the JSON export envelope.
type ExportData struct {
	ExportedAt time.Time        `json:"exportedAt"`
	User       *model.User      `json:"user"`
	Categories []model.Category `json:"categories"`
	Products   []model.Product  `json:"products"`
	Scans      []model.QRScan   `json:"scans"`
}

func (s *ExportService) collect(userId int) (*ExportData, error) {
	db := database.GetDB()

	data := &ExportData{ExportedAt: time.Now()}

	user := &model.User{}
	if err := db.First(user, userId).Error; err != nil {
		return nil, err
	}
	data.User = user

	if err := db.Where("user_id = ?", userId).
		Order("created_at ASC").
		Find(&data.Categories).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userId).
		Order("created_at ASC").
		Find(&data.Products).Error; err != nil {
		return nil, err
	}
	err := db.Model(model.QRScan{}).
		Joins("JOIN products ON products.id = qr_scans.product_id").
		Where("products.user_id = ?", userId).
		Order("qr_scans.scanned_at ASC").
		Find(&data.Scans).Error
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *ExportService) ExportJSON(userId int) ([]byte, error) {
	data, err := s.collect(userId)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(data, "", "  ")
}

// ExportCSV flattens the product list with per-product scan counts. CSV
// carries less than the JSON export; it exists for spreadsheet users.
func (s *ExportService) ExportCSV(userId int) ([]byte, error) {
	data, err := s.collect(userId)
	if err != nil {
		return nil, err
	}

	scanCounts := make(map[int]int, len(data.Products))
	for _, scan := range data.Scans {
		scanCounts[scan.ProductId]++
	}
	categoryNames := make(map[int]string, len(data.Categories))
	for _, c := range data.Categories {
		categoryNames[c.Id] = c.Name
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "name", "category", "price", "active", "scans", "created_at"}); err != nil {
		return nil, err
	}
	for _, p := range data.Products {
		category := ""
		if p.CategoryId != nil {
			category = categoryNames[*p.CategoryId]
		}
		active := "no"
		if p.IsActive {
			active = "yes"
		}
		record := []string{
			strconv.Itoa(p.Id),
			p.Name,
			category,
			p.Price.StringFixed(2),
			active,
			strconv.Itoa(scanCounts[p.Id]),
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
