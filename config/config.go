// Package config provides process-level configuration for the qrpanel
// application: embedded name/version, environment variables with the
// QRPANEL_ prefix, and an optional TOML override file. Runtime-tunable
// settings live in the database behind the setting service instead.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// FileConfig is the shape of the optional qrpanel.toml override file.
// Values set here win over environment variables.
type FileConfig struct {
	LogLevel    string `toml:"logLevel"`
	DBFolder    string `toml:"dbFolder"`
	LogFolder   string `toml:"logFolder"`
	AssetFolder string `toml:"assetFolder"`
}

var fileConfig FileConfig

// LoadFile parses the TOML override file at path. A missing file is not an
// error; a malformed one is.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return toml.Unmarshal(data, &fileConfig)
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	if fileConfig.LogLevel != "" {
		return LogLevel(fileConfig.LogLevel)
	}
	logLevel := os.Getenv("QRPANEL_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("QRPANEL_DEBUG") == "true"
}

func GetDBFolderPath() string {
	if fileConfig.DBFolder != "" {
		return fileConfig.DBFolder
	}
	dbFolderPath := os.Getenv("QRPANEL_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/qrpanel"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	if fileConfig.LogFolder != "" {
		return fileConfig.LogFolder
	}
	logFolderPath := os.Getenv("QRPANEL_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetAssetFolder is the root for runtime-generated files: uploaded product
// and profile images plus generated QR rasters, each in its own subdirectory.
func GetAssetFolder() string {
	if fileConfig.AssetFolder != "" {
		return fileConfig.AssetFolder
	}
	assetFolder := os.Getenv("QRPANEL_ASSET_FOLDER")
	if assetFolder == "" {
		assetFolder = "assets"
	}
	return assetFolder
}

func GetQRCodeFolder() string {
	return GetAssetFolder() + "/qr_codes"
}

func GetProductImageFolder() string {
	return GetAssetFolder() + "/products"
}

func GetProfileImageFolder() string {
	return GetAssetFolder() + "/profiles"
}
