package service

import (
	"os"

	"qrpanel/database"
	"qrpanel/database/model"
	"qrpanel/logger"
	"qrpanel/util/common"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductService implements the product CRUD surface. Every mutating query
// carries the owner's user_id; the QR raster for a product is produced
// asynchronously by the pending-QR job after the row is committed.
type ProductService struct{}

// ProductRow joins a product with its category display fields and the scan
// count computed from the scan log.
type ProductRow struct {
	model.Product
	CategoryName  string `json:"categoryName"`
	CategoryColor string `json:"categoryColor"`
	OwnerName     string `json:"ownerName"`
	ScanCount     int64  `json:"scanCount"`
}

// ProductFilter narrows a product listing. Status is "all", "active" or
// "inactive". Zero CategoryId means no category filter.
type ProductFilter struct {
	CategoryId int
	Search     string
	Status     string
	Page       int
	Limit      int
}

func (f *ProductFilter) apply(q *gorm.DB) *gorm.DB {
	if f.CategoryId > 0 {
		q = q.Where("products.category_id = ?", f.CategoryId)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("(products.name LIKE ? OR products.description LIKE ?)", pattern, pattern)
	}
	switch f.Status {
	case "active":
		q = q.Where("products.is_active = ?", true)
	case "inactive":
		q = q.Where("products.is_active = ?", false)
	}
	return q
}

const productSelect = `products.*,
	COALESCE(categories.name, '') AS category_name,
	COALESCE(categories.color, '') AS category_color,
	COALESCE(users.name, '') AS owner_name,
	(SELECT COUNT(*) FROM qr_scans WHERE qr_scans.product_id = products.id) AS scan_count`

// GetProducts returns one page of the owner's products plus the total
// matching count. LIMIT and OFFSET are bound parameters.
func (s *ProductService) GetProducts(userId int, filter ProductFilter) ([]*ProductRow, int64, error) {
	db := database.GetDB()
	q := filter.apply(db.Model(model.Product{}).Where("products.user_id = ?", userId))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 12
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	rows := make([]*ProductRow, 0)
	err := q.
		Select(productSelect).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Joins("LEFT JOIN users ON users.id = products.user_id").
		Order("products.created_at DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// GetAllProducts is the admin view across every owner.
func (s *ProductService) GetAllProducts(filter ProductFilter) ([]*ProductRow, int64, error) {
	db := database.GetDB()
	q := filter.apply(db.Model(model.Product{}))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 12
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	rows := make([]*ProductRow, 0)
	err := q.
		Select(productSelect).
		Joins("LEFT JOIN categories ON categories.id = products.category_id").
		Joins("LEFT JOIN users ON users.id = products.user_id").
		Order("products.created_at DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *ProductService) GetProduct(userId, productId int) (*model.Product, error) {
	db := database.GetDB()
	product := &model.Product{}
	err := db.Model(model.Product{}).
		Where("id = ? AND user_id = ?", productId, userId).
		First(product).Error
	if err != nil {
		return nil, err
	}
	return product, nil
}

func validateProduct(name string, price decimal.Decimal) error {
	if name == "" {
		return common.NewError("product name is required")
	}
	if !price.IsPositive() {
		return common.NewError("price must be greater than zero")
	}
	return nil
}

// CreateProduct inserts the product in one transaction with QR status
// pending; the pending-QR job picks it up afterwards. Products are active
// by default.
func (s *ProductService) CreateProduct(userId int, categoryId *int, name string, price decimal.Decimal, description, image string) (*model.Product, error) {
	if err := validateProduct(name, price); err != nil {
		return nil, err
	}

	product := &model.Product{
		UserId:      userId,
		CategoryId:  categoryId,
		Name:        name,
		Price:       price,
		Description: description,
		Image:       image,
		QRStatus:    model.QRPending,
		IsActive:    true,
	}

	db := database.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		if categoryId != nil {
			var count int64
			if err := tx.Model(model.Category{}).
				Where("id = ? AND user_id = ?", *categoryId, userId).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return common.NewError("category not found")
			}
		}
		return tx.Create(product).Error
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct rewrites the product fields and marks the QR pending again
// so the job regenerates it with the new payload. image is ignored when
// empty; when set, the old image file is removed.
func (s *ProductService) UpdateProduct(userId, productId int, categoryId *int, name string, price decimal.Decimal, description, image string) error {
	if err := validateProduct(name, price); err != nil {
		return err
	}

	product, err := s.GetProduct(userId, productId)
	if err != nil {
		return err
	}

	values := map[string]any{
		"category_id": categoryId,
		"name":        name,
		"price":       price,
		"description": description,
		"qr_status":   model.QRPending,
		"qr_attempts": 0,
	}
	oldImage := ""
	if image != "" {
		values["image"] = image
		oldImage = product.Image
	}

	db := database.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if categoryId != nil {
			var count int64
			if err := tx.Model(model.Category{}).
				Where("id = ? AND user_id = ?", *categoryId, userId).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return common.NewError("category not found")
			}
		}
		return tx.Model(model.Product{}).
			Where("id = ? AND user_id = ?", productId, userId).
			Updates(values).Error
	})
	if err != nil {
		return err
	}

	if oldImage != "" {
		if err := os.Remove(oldImage); err != nil && !os.IsNotExist(err) {
			logger.Warning("remove old product image:", err)
		}
	}
	return nil
}

// DeleteProduct removes the row, its scan history, and its files.
func (s *ProductService) DeleteProduct(userId, productId int) error {
	product, err := s.GetProduct(userId, productId)
	if err != nil {
		return err
	}

	db := database.GetDB()
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productId).Delete(&model.QRScan{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", productId, userId).Delete(&model.Product{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, path := range []string{product.Image, product.QRCodePath} {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warning("remove product file:", err)
		}
	}
	return nil
}

func (s *ProductService) SetActive(userId, productId int, active bool) error {
	db := database.GetDB()
	result := db.Model(model.Product{}).
		Where("id = ? AND user_id = ?", productId, userId).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetPendingQRProducts returns products whose QR raster still needs to be
// generated, oldest first, for the background job.
func (s *ProductService) GetPendingQRProducts(limit int) ([]*model.Product, error) {
	db := database.GetDB()
	products := make([]*model.Product, 0)
	err := db.Model(model.Product{}).
		Where("qr_status = ?", model.QRPending).
		Order("updated_at ASC").
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
