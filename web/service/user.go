package service

import (
	"os"

	"qrpanel/database"
	"qrpanel/database/model"
	"qrpanel/logger"
	"qrpanel/util/common"
	"qrpanel/util/crypto"

	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = common.NewError("invalid email or password")
	ErrAccountPending     = common.NewError("account is pending approval")
	ErrAccountBlocked     = common.NewError("account has been blocked")
	ErrEmailTaken         = common.NewError("email address is already registered")
)

// UserService handles registration, authentication, and self-service
// account management. Admin-side user management lives in UserAdminService.
type UserService struct{}

// Register creates a new user in pending status. The account cannot log in
// until an admin approves it.
func (s *UserService) Register(name, email, password, phone, address string) (*model.User, error) {
	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:     name,
		Email:    email,
		Password: hash,
		Phone:    phone,
		Address:  address,
		Role:     model.RoleUser,
		Status:   model.StatusPending,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CheckUser authenticates by email and password. Pending and blocked
// accounts fail with a status-specific error even when the password matches.
func (s *UserService) CheckUser(email, password string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).Where("email = ?", email).First(user).Error
	if database.IsNotFound(err) {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		logger.Warning("check user err:", err)
		return nil, ErrInvalidCredentials
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, ErrInvalidCredentials
	}

	switch user.Status {
	case model.StatusPending:
		return nil, ErrAccountPending
	case model.StatusBlocked:
		return nil, ErrAccountBlocked
	}
	return user, nil
}

func (s *UserService) GetUser(id int) (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).First(user, id).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile updates identity fields. profileImage replaces the stored
// image when non-empty; the previous file is removed from disk.
func (s *UserService) UpdateProfile(id int, name, email, phone, address, profileImage string) error {
	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).Where("email = ? AND id != ?", email, id).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrEmailTaken
	}

	user, err := s.GetUser(id)
	if err != nil {
		return err
	}

	values := map[string]any{
		"name":    name,
		"email":   email,
		"phone":   phone,
		"address": address,
	}
	oldImage := ""
	if profileImage != "" {
		values["profile_image"] = profileImage
		oldImage = user.ProfileImage
	}

	err = db.Model(model.User{}).Where("id = ?", id).Updates(values).Error
	if err != nil {
		return err
	}
	if oldImage != "" {
		if err := os.Remove(oldImage); err != nil && !os.IsNotExist(err) {
			logger.Warning("remove old profile image:", err)
		}
	}
	return nil
}

func (s *UserService) UpdatePassword(id int, currentPassword, newPassword string) error {
	user, err := s.GetUser(id)
	if err != nil {
		return err
	}
	if !crypto.CheckPasswordHash(user.Password, currentPassword) {
		return common.NewError("current password is incorrect")
	}
	hash, err := crypto.HashPasswordAsBcrypt(newPassword)
	if err != nil {
		return err
	}
	db := database.GetDB()
	return db.Model(model.User{}).Where("id = ?", id).Update("password", hash).Error
}

// GetAdmin returns the first admin account, for the command line tools.
func (s *UserService) GetAdmin() (*model.User, error) {
	db := database.GetDB()
	user := &model.User{}
	err := db.Model(model.User{}).Where("role = ?", model.RoleAdmin).First(user).Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateAdminCredentials rewrites the admin login from the command line,
// for recovering a locked-out panel. Empty arguments leave the current
// value in place.
func (s *UserService) UpdateAdminCredentials(email, password string) error {
	admin, err := s.GetAdmin()
	if err != nil {
		return err
	}
	values := map[string]any{}
	if email != "" {
		values["email"] = email
	}
	if password != "" {
		hash, err := crypto.HashPasswordAsBcrypt(password)
		if err != nil {
			return err
		}
		values["password"] = hash
	}
	if len(values) == 0 {
		return nil
	}
	db := database.GetDB()
	return db.Model(model.User{}).Where("id = ?", admin.Id).Updates(values).Error
}

// UserStats are the per-owner counters shown on the dashboard and profile
// pages, recomputed per page view.
type UserStats struct {
	Products       int64 `json:"products"`
	ActiveProducts int64 `json:"activeProducts"`
	Categories     int64 `json:"categories"`
	Scans          int64 `json:"scans"`
}

func (s *UserService) GetUserStats(userId int) (*UserStats, error) {
	db := database.GetDB()
	stats := &UserStats{}

	err := db.Model(model.Product{}).Where("user_id = ?", userId).Count(&stats.Products).Error
	if err != nil {
		return nil, err
	}
	err = db.Model(model.Product{}).Where("user_id = ? AND is_active = ?", userId, true).Count(&stats.ActiveProducts).Error
	if err != nil {
		return nil, err
	}
	err = db.Model(model.Category{}).Where("user_id = ?", userId).Count(&stats.Categories).Error
	if err != nil {
		return nil, err
	}
	err = db.Model(model.QRScan{}).
		Joins("JOIN products ON products.id = qr_scans.product_id").
		Where("products.user_id = ?", userId).
		Count(&stats.Scans).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// DeleteAccount removes the user and everything they own in one
// transaction, then removes their files from disk best-effort. This is the
// only multi-table delete in the system and the only place that needs a
// transaction boundary.
func (s *UserService) DeleteAccount(userId int) error {
	db := database.GetDB()

	var filePaths []string
	err := db.Transaction(func(tx *gorm.DB) error {
		user := &model.User{}
		if err := tx.First(user, userId).Error; err != nil {
			return err
		}
		if user.ProfileImage != "" {
			filePaths = append(filePaths, user.ProfileImage)
		}

		var products []model.Product
		if err := tx.Where("user_id = ?", userId).Find(&products).Error; err != nil {
			return err
		}
		for _, p := range products {
			if p.Image != "" {
				filePaths = append(filePaths, p.Image)
			}
			if p.QRCodePath != "" {
				filePaths = append(filePaths, p.QRCodePath)
			}
		}

		if err := tx.Where("product_id IN (?)",
			tx.Model(model.Product{}).Select("id").Where("user_id = ?", userId),
		).Delete(&model.QRScan{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userId).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userId).Delete(&model.Category{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.User{}, userId).Error
	})
	if err != nil {
		return err
	}

	for _, path := range filePaths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warning("delete account file cleanup:", err)
		}
	}
	return nil
}
