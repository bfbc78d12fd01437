// Package controller provides the HTTP request handlers for the qrpanel web
// application: authentication, product and category management, QR codes,
// scan tracking, analytics, and the admin surface.
package controller

import (
	"net/http"

	"qrpanel/web/session"

	"github.com/gin-gonic/gin"
)

// BaseController provides the authentication checks shared by all
// authenticated controllers.
type BaseController struct{}

// checkLogin verifies the session and aborts unauthenticated requests. Page
// requests are redirected to the login page; AJAX requests get a 401.
func (a *BaseController) checkLogin(c *gin.Context) {
	if !session.IsLogin(c) {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusUnauthorized, false, "please log in again")
		} else {
			session.SetFlash(c, "error", "please log in first")
			c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
		}
		c.Abort()
	} else {
		c.Next()
	}
}

// checkAdmin aborts requests from non-admin sessions. Runs after checkLogin.
func (a *BaseController) checkAdmin(c *gin.Context) {
	if !session.IsAdmin(c) {
		if isAjax(c) {
			pureJsonMsg(c, http.StatusForbidden, false, "admin access required")
		} else {
			session.SetFlash(c, "error", "admin access required")
			c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path")+"panel")
		}
		c.Abort()
	} else {
		c.Next()
	}
}
