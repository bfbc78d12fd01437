// Package entity defines data structures shared by the web layer.
package entity

import (
	"net"
	"strings"
	"time"

	"qrpanel/util/common"
)

// Msg represents a standard AJAX response with success status, message text,
// and optional data object.
type Msg struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Obj     any    `json:"obj"`
}

// AllSetting mirrors the settings key/value table as one typed struct for
// the admin settings page. JSON tags must match the setting keys.
type AllSetting struct {
	AppName      string `json:"appName" form:"appName"`           // Display name shown in page titles
	ContactEmail string `json:"contactEmail" form:"contactEmail"` // Support contact shown in the footer
	AppURL       string `json:"appURL" form:"appURL"`             // Public base URL embedded in QR scan links

	WebListen     string `json:"webListen" form:"webListen"`         // Web server listen IP address
	WebPort       int    `json:"webPort" form:"webPort"`             // Web server port number
	WebBasePath   string `json:"webBasePath" form:"webBasePath"`     // Base path for panel URLs
	SessionMaxAge int    `json:"sessionMaxAge" form:"sessionMaxAge"` // Session maximum age in minutes

	PageSize           int    `json:"pageSize" form:"pageSize"`                     // Items per page in product/user lists
	MaxProductsPerUser int    `json:"maxProductsPerUser" form:"maxProductsPerUser"` // Advisory cap, not enforced
	TimeLocation       string `json:"timeLocation" form:"timeLocation"`             // Time zone for scheduled jobs
}

// CheckValid rejects settings that would make the panel unreachable or the
// scheduler misbehave before they are saved.
func (s *AllSetting) CheckValid() error {
	if s.WebListen != "" {
		ip := net.ParseIP(s.WebListen)
		if ip == nil {
			return common.NewError("web listen is not a valid ip:", s.WebListen)
		}
	}
	if s.WebPort <= 0 || s.WebPort > 65535 {
		return common.NewError("web port is not a valid port:", s.WebPort)
	}
	if !strings.HasPrefix(s.WebBasePath, "/") {
		s.WebBasePath = "/" + s.WebBasePath
	}
	if !strings.HasSuffix(s.WebBasePath, "/") {
		s.WebBasePath += "/"
	}
	if s.SessionMaxAge < 0 {
		return common.NewError("session max age must not be negative")
	}
	if s.PageSize <= 0 {
		return common.NewError("page size must be positive")
	}
	_, err := time.LoadLocation(s.TimeLocation)
	if err != nil {
		return common.NewError("time location not exist:", s.TimeLocation)
	}
	return nil
}
