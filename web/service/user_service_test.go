package service

import (
	"testing"

	"qrpanel/database"
	"qrpanel/database/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLoginLifecycle(t *testing.T) {
	setupTestDB(t)
	userService := UserService{}
	adminService := UserAdminService{}

	user, err := userService.Register("Alice", "alice@example.com", "secret1", "", "")
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, user.Status)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEqual(t, "secret1", user.Password, "password must be stored hashed")

	_, err = userService.Register("Alice Again", "alice@example.com", "secret2", "", "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// pending accounts cannot log in even with the right password
	_, err = userService.CheckUser("alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrAccountPending)

	require.NoError(t, adminService.ApproveUser(user.Id))
	got, err := userService.CheckUser("alice@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.Id, got.Id)

	_, err = userService.CheckUser("alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, adminService.BlockUser(user.Id))
	_, err = userService.CheckUser("alice@example.com", "secret1")
	assert.ErrorIs(t, err, ErrAccountBlocked)

	_, err = userService.CheckUser("nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStatusTransitions(t *testing.T) {
	setupTestDB(t)
	userService := UserService{}
	adminService := UserAdminService{}

	user, err := userService.Register("Bob", "bob@example.com", "secret1", "", "")
	require.NoError(t, err)

	// pending can only go to approved
	assert.Error(t, adminService.BlockUser(user.Id))
	require.NoError(t, adminService.ApproveUser(user.Id))

	// approved cannot be approved again
	assert.Error(t, adminService.ApproveUser(user.Id))

	require.NoError(t, adminService.BlockUser(user.Id))
	require.NoError(t, adminService.UnblockUser(user.Id))

	// admins are never managed by this service
	admin := &model.User{}
	err = database.GetDB().Where("role = ?", model.RoleAdmin).First(admin).Error
	require.NoError(t, err)
	assert.Error(t, adminService.BlockUser(admin.Id))
}

func TestUpdatePassword(t *testing.T) {
	setupTestDB(t)
	userService := UserService{}

	user, err := userService.Register("Carol", "carol@example.com", "oldpass", "", "")
	require.NoError(t, err)

	assert.Error(t, userService.UpdatePassword(user.Id, "wrong", "newpass1"))
	require.NoError(t, userService.UpdatePassword(user.Id, "oldpass", "newpass1"))

	adminService := UserAdminService{}
	require.NoError(t, adminService.ApproveUser(user.Id))
	_, err = userService.CheckUser("carol@example.com", "newpass1")
	assert.NoError(t, err)
}

func TestDeleteAccountCascades(t *testing.T) {
	setupTestDB(t)
	owner := createTestUser(t, "owner@example.com")
	survivor := createTestUser(t, "survivor@example.com")

	userService := UserService{}
	productService := ProductService{}
	categoryService := CategoryService{}
	scanService := ScanService{}

	category, err := categoryService.CreateCategory(owner.Id, "Drinks", "", "")
	require.NoError(t, err)
	product, err := productService.CreateProduct(owner.Id, &category.Id, "Coffee", decimal.NewFromInt(100), "", "")
	require.NoError(t, err)
	scanService.TrackScan(product.Id, nil, "10.0.0.1", "agent", "")

	keeper, err := productService.CreateProduct(survivor.Id, nil, "Tea", decimal.NewFromInt(50), "", "")
	require.NoError(t, err)
	scanService.TrackScan(keeper.Id, nil, "10.0.0.2", "agent", "")

	require.NoError(t, userService.DeleteAccount(owner.Id))

	_, err = userService.GetUser(owner.Id)
	assert.True(t, database.IsNotFound(err))

	var count int64
	db := database.GetDB()
	require.NoError(t, db.Model(model.Product{}).Where("user_id = ?", owner.Id).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	require.NoError(t, db.Model(model.Category{}).Where("user_id = ?", owner.Id).Count(&count).Error)
	assert.EqualValues(t, 0, count)
	require.NoError(t, db.Model(model.QRScan{}).Where("product_id = ?", product.Id).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	// the other user's data is untouched
	require.NoError(t, db.Model(model.QRScan{}).Where("product_id = ?", keeper.Id).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestListUsersFilterAndCounts(t *testing.T) {
	setupTestDB(t)
	userService := UserService{}
	adminService := UserAdminService{}

	for _, u := range []struct {
		name, email string
		approve     bool
	}{
		{"Alice", "alice@example.com", true},
		{"Bob", "bob@example.com", false},
		{"Carol", "carol@example.com", true},
	} {
		user, err := userService.Register(u.name, u.email, "secret1", "", "")
		require.NoError(t, err)
		if u.approve {
			require.NoError(t, adminService.ApproveUser(user.Id))
		}
	}

	users, total, err := adminService.ListUsers(UserFilter{Status: "all", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, users, 3)

	_, total, err = adminService.ListUsers(UserFilter{Status: "pending", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	users, _, err = adminService.ListUsers(UserFilter{Search: "ali", Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Alice", users[0].Name)

	counts, err := adminService.CountUsers()
	require.NoError(t, err)
	assert.EqualValues(t, 3, counts.Total)
	assert.EqualValues(t, 1, counts.Pending)
	assert.EqualValues(t, 2, counts.Approved)
	assert.EqualValues(t, 0, counts.Blocked)
}
