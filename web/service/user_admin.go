package service

import (
	"qrpanel/database"
	"qrpanel/database/model"
	"qrpanel/logger"
	"qrpanel/util/common"
)

// UserAdminService implements the admin-side user lifecycle. Status
// transitions are restricted: pending -> approved, approved <-> blocked,
// and any status -> deleted. Admin accounts are never managed here; every
// query carries role = 'user'.
type UserAdminService struct{}

// UserRow is a user joined with its product and scan counters for the
// manage-users page.
type UserRow struct {
	model.User
	ProductCount int64 `json:"productCount"`
	ScanCount    int64 `json:"scanCount"`
}

// UserFilter narrows the admin user list. Status "all" (or empty) matches
// every status; Search matches name or email.
type UserFilter struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// ListUsers returns one page of non-admin users plus the total count for
// pagination. Pagination arguments are always bound, never interpolated.
func (s *UserAdminService) ListUsers(filter UserFilter) ([]*UserRow, int64, error) {
	db := database.GetDB()

	q := db.Model(model.User{}).Where("role = ?", model.RoleUser)
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("(name LIKE ? OR email LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Limit <= 0 {
		filter.Limit = 15
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	offset := (filter.Page - 1) * filter.Limit

	rows := make([]*UserRow, 0)
	err := q.
		Select(`users.*,
			(SELECT COUNT(*) FROM products WHERE products.user_id = users.id) AS product_count,
			(SELECT COUNT(*) FROM qr_scans JOIN products p ON qr_scans.product_id = p.id WHERE p.user_id = users.id) AS scan_count`).
		Order("users.created_at DESC").
		Limit(filter.Limit).
		Offset(offset).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// UserCounts are the status totals shown above the admin user list.
type UserCounts struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Blocked  int64 `json:"blocked"`
}

func (s *UserAdminService) CountUsers() (*UserCounts, error) {
	db := database.GetDB()
	counts := &UserCounts{}

	if err := db.Model(model.User{}).Where("role = ?", model.RoleUser).Count(&counts.Total).Error; err != nil {
		return nil, err
	}
	for status, dst := range map[model.UserStatus]*int64{
		model.StatusPending:  &counts.Pending,
		model.StatusApproved: &counts.Approved,
		model.StatusBlocked:  &counts.Blocked,
	} {
		if err := db.Model(model.User{}).
			Where("role = ? AND status = ?", model.RoleUser, status).
			Count(dst).Error; err != nil {
			return nil, err
		}
	}
	return counts, nil
}

// allowedTransitions maps a current status to the set of statuses an admin
// may move it to.
var allowedTransitions = map[model.UserStatus][]model.UserStatus{
	model.StatusPending:  {model.StatusApproved},
	model.StatusApproved: {model.StatusBlocked},
	model.StatusBlocked:  {model.StatusApproved},
}

func (s *UserAdminService) setStatus(userId int, to model.UserStatus) error {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("id = ? AND role = ?", userId, model.RoleUser).
		First(user).Error
	if err != nil {
		return err
	}

	ok := false
	for _, allowed := range allowedTransitions[user.Status] {
		if allowed == to {
			ok = true
			break
		}
	}
	if !ok {
		return common.NewErrorf("cannot change user status from %s to %s", user.Status, to)
	}

	return db.Model(model.User{}).
		Where("id = ? AND role = ?", userId, model.RoleUser).
		Update("status", to).Error
}

func (s *UserAdminService) ApproveUser(userId int) error {
	return s.setStatus(userId, model.StatusApproved)
}

func (s *UserAdminService) BlockUser(userId int) error {
	return s.setStatus(userId, model.StatusBlocked)
}

// UnblockUser returns a blocked account to approved.
func (s *UserAdminService) UnblockUser(userId int) error {
	return s.setStatus(userId, model.StatusApproved)
}

// DeleteUser removes a non-admin account and everything it owns. Reuses the
// transactional cascade from UserService.
func (s *UserAdminService) DeleteUser(userId int) error {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("id = ? AND role = ?", userId, model.RoleUser).
		First(user).Error
	if err != nil {
		return err
	}

	userService := UserService{}
	if err := userService.DeleteAccount(userId); err != nil {
		return err
	}
	logger.Infof("admin deleted user %d (%s)", userId, user.Email)
	return nil
}
