package service

import (
	"qrpanel/database"
	"qrpanel/database/model"
	"qrpanel/util/common"
	"qrpanel/util/random"

	"gorm.io/gorm"
)

var ErrCategoryHasProducts = common.NewError("cannot delete category with existing products")

// CategoryService manages per-owner product categories. Every mutation is
// scoped by user_id so one user can never touch another's rows.
type CategoryService struct{}

// CategoryRow is a category with its product count for the categories page.
type CategoryRow struct {
	model.Category
	ProductCount int64 `json:"productCount"`
}

func (s *CategoryService) GetCategories(userId int) ([]*CategoryRow, error) {
	db := database.GetDB()
	rows := make([]*CategoryRow, 0)
	err := db.Model(model.Category{}).
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins("LEFT JOIN products ON products.category_id = categories.id").
		Where("categories.user_id = ?", userId).
		Group("categories.id").
		Order("categories.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CategoryService) GetCategory(userId, categoryId int) (*model.Category, error) {
	db := database.GetDB()
	category := &model.Category{}
	err := db.Model(model.Category{}).
		Where("id = ? AND user_id = ?", categoryId, userId).
		First(category).Error
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) CreateCategory(userId int, name, description, color string) (*model.Category, error) {
	if name == "" {
		return nil, common.NewError("category name is required")
	}
	if color == "" {
		color = random.Color()
	}
	category := &model.Category{
		UserId:      userId,
		Name:        name,
		Description: description,
		Color:       color,
	}
	db := database.GetDB()
	if err := db.Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(userId, categoryId int, name, description, color string) error {
	if name == "" {
		return common.NewError("category name is required")
	}
	db := database.GetDB()
	result := db.Model(model.Category{}).
		Where("id = ? AND user_id = ?", categoryId, userId).
		Updates(map[string]any{
			"name":        name,
			"description": description,
			"color":       color,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteCategory refuses to delete a category that still has products; the
// caller must move or delete those first.
func (s *CategoryService) DeleteCategory(userId, categoryId int) error {
	db := database.GetDB()

	var productCount int64
	err := db.Model(model.Product{}).
		Where("category_id = ? AND user_id = ?", categoryId, userId).
		Count(&productCount).Error
	if err != nil {
		return err
	}
	if productCount > 0 {
		return ErrCategoryHasProducts
	}

	result := db.Where("id = ? AND user_id = ?", categoryId, userId).Delete(&model.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
