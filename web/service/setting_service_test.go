package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingDefaultsAndRoundtrip(t *testing.T) {
	setupTestDB(t)
	service := SettingService{}

	all, err := service.GetAllSetting()
	require.NoError(t, err)
	assert.Equal(t, "QR Generator Pro", all.AppName)
	assert.Equal(t, 2053, all.WebPort)
	assert.Equal(t, 12, all.PageSize)

	all.AppName = "My Shop"
	all.WebPort = 8080
	all.AppURL = "https://shop.example.com"
	require.NoError(t, service.UpdateAllSetting(all))

	got, err := service.GetAllSetting()
	require.NoError(t, err)
	assert.Equal(t, "My Shop", got.AppName)
	assert.Equal(t, 8080, got.WebPort)
	assert.Equal(t, "https://shop.example.com", got.AppURL)

	require.NoError(t, service.ResetSettings())
	got, err = service.GetAllSetting()
	require.NoError(t, err)
	assert.Equal(t, "QR Generator Pro", got.AppName)
}

func TestGetAppURLFallback(t *testing.T) {
	setupTestDB(t)
	service := SettingService{}

	url, err := service.GetAppURL()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:2053", url)

	require.NoError(t, service.setString("appURL", "https://shop.example.com"))
	url, err = service.GetAppURL()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", url)
}

func TestGetBasePathNormalization(t *testing.T) {
	setupTestDB(t)
	service := SettingService{}

	path, err := service.GetBasePath()
	require.NoError(t, err)
	assert.Equal(t, "/", path)

	require.NoError(t, service.setString("webBasePath", "/qr"))
	path, err = service.GetBasePath()
	require.NoError(t, err)
	assert.Equal(t, "/qr/", path)
}

func TestSecretIsStable(t *testing.T) {
	setupTestDB(t)
	service := SettingService{}

	first, err := service.GetSecret()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	// the generated secret is persisted on first read
	second, err := service.GetSecret()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
