package service

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"qrpanel/config"
	"qrpanel/database"
	"qrpanel/database/model"
	"qrpanel/logger"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gorm.io/gorm"
)

// maxQRAttempts bounds how often the background job retries a failing
// product before parking it in failed status.
const maxQRAttempts = 3

// QRService renders product QR codes. The raster encodes a self-describing
// JSON payload plus a scan URL, so both offline decoders and camera apps
// that follow the link get useful data.
type QRService struct {
	settingService SettingService
}

type qrPayload struct {
	Type        string `json:"type"`
	ProductId   int    `json:"product_id"`
	ProductName string `json:"product_name"`
	Price       string `json:"price"`
	Owner       string `json:"owner"`
	Description string `json:"description"`
	GeneratedAt string `json:"generated_at"`
	ScanURL     string `json:"scan_url"`
}

var pricePrinter = message.NewPrinter(language.English)

// FormatPrice renders a price the way it appears inside QR payloads and on
// product pages: peso sign, grouped thousands, two decimals.
func FormatPrice(price decimal.Decimal) string {
	return pricePrinter.Sprintf("₱%.2f", price.InexactFloat64())
}

func (s *QRService) buildPayload(product *model.Product, ownerName string) ([]byte, error) {
	scanURL, err := s.scanURL(product.Id)
	if err != nil {
		return nil, err
	}
	return json.Marshal(qrPayload{
		Type:        "product",
		ProductId:   product.Id,
		ProductName: product.Name,
		Price:       FormatPrice(product.Price),
		Owner:       ownerName,
		Description: product.Description,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		ScanURL:     scanURL,
	})
}

func (s *QRService) scanURL(productId int) (string, error) {
	appURL, err := s.settingService.GetAppURL()
	if err != nil {
		return "", err
	}
	basePath, err := s.settingService.GetBasePath()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%sscan?id=%d", appURL, basePath, productId), nil
}

// Generate renders the QR raster for a product and flips it to ready. The
// new file is written before the old one is removed, so a crash between the
// two steps leaves at most an orphaned file, never a product pointing at a
// missing one. The daily sweep job collects orphans.
func (s *QRService) Generate(product *model.Product) error {
	db := database.GetDB()

	owner := &model.User{}
	if err := db.Model(model.User{}).First(owner, product.UserId).Error; err != nil {
		return err
	}

	payload, err := s.buildPayload(product, owner.Name)
	if err != nil {
		return err
	}

	folder := config.GetQRCodeFolder()
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return err
	}
	path := filepath.Join(folder, fmt.Sprintf("qr_%d_%d.png", product.Id, time.Now().Unix()))
	if err := qrcode.WriteFile(string(payload), qrcode.Highest, 300, path); err != nil {
		return err
	}

	err = db.Model(model.Product{}).
		Where("id = ?", product.Id).
		Updates(map[string]any{
			"qr_code_path": path,
			"qr_status":    model.QRReady,
			"qr_attempts":  0,
		}).Error
	if err != nil {
		// the row keeps its old path, so the fresh raster is the orphan
		if removeErr := os.Remove(path); removeErr != nil {
			logger.Warning("remove orphaned qr file:", removeErr)
		}
		return err
	}

	if product.QRCodePath != "" && product.QRCodePath != path {
		if err := os.Remove(product.QRCodePath); err != nil && !os.IsNotExist(err) {
			logger.Warning("remove old qr file:", err)
		}
	}
	return nil
}

// RecordFailure counts a failed generation attempt and parks the product in
// failed status once the retry budget is spent.
func (s *QRService) RecordFailure(product *model.Product, cause error) error {
	db := database.GetDB()

	attempts := product.QRAttempts + 1
	status := model.QRPending
	if attempts >= maxQRAttempts {
		status = model.QRFailed
		logger.Warningf("qr generation for product %d failed permanently after %d attempts: %v",
			product.Id, attempts, cause)
	} else {
		logger.Warningf("qr generation for product %d failed (attempt %d): %v",
			product.Id, attempts, cause)
	}

	return db.Model(model.Product{}).
		Where("id = ?", product.Id).
		Updates(map[string]any{
			"qr_status":   status,
			"qr_attempts": attempts,
		}).Error
}

// Regenerate puts an existing product back in the generation queue, for the
// regenerate button on the QR codes page. Ownership is checked the same way
// as every other product mutation.
func (s *QRService) Regenerate(userId, productId int) error {
	db := database.GetDB()
	result := db.Model(model.Product{}).
		Where("id = ? AND user_id = ?", productId, userId).
		Updates(map[string]any{
			"qr_status":   model.QRPending,
			"qr_attempts": 0,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SweepOrphans removes files in the QR folder that no product references.
// Called by the daily cleanup job.
func (s *QRService) SweepOrphans() (int, error) {
	db := database.GetDB()

	var paths []string
	err := db.Model(model.Product{}).
		Where("qr_code_path != ''").
		Pluck("qr_code_path", &paths).Error
	if err != nil {
		return 0, err
	}
	referenced := make(map[string]bool, len(paths))
	for _, p := range paths {
		referenced[filepath.Base(p)] = true
	}

	entries, err := os.ReadDir(config.GetQRCodeFolder())
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || referenced[entry.Name()] {
			continue
		}
		path := filepath.Join(config.GetQRCodeFolder(), entry.Name())
		if err := os.Remove(path); err != nil {
			logger.Warning("sweep orphaned qr file:", err)
			continue
		}
		removed++
	}
	return removed, nil
}
