package controller

import (
	"fmt"
	"net/http"
	"time"

	"qrpanel/config"
	"qrpanel/logger"
	"qrpanel/web/service"
	"qrpanel/web/session"

	gsessions "github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ProfileController handles self-service account management: profile edits,
// password changes, data export, and account deletion.
type ProfileController struct {
	userService   service.UserService
	uploadService service.UploadService
	exportService service.ExportService
}

func NewProfileController(g *gin.RouterGroup) *ProfileController {
	a := &ProfileController{}
	a.initRouter(g)
	return a
}

func (a *ProfileController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/profile")

	g.POST("/update", a.update)
	g.POST("/password", a.password)
	g.GET("/export/json", a.exportJSON)
	g.GET("/export/csv", a.exportCSV)
	g.POST("/delete", a.deleteAccount)
}

// update edits the profile fields and optional profile image, then refreshes
// the session copy of the user so the header shows the new name immediately.
func (a *ProfileController) update(c *gin.Context) {
	user := session.GetLoginUser(c)

	profileImage := ""
	file, fileErr := c.FormFile("profileImage")
	if fileErr == nil {
		path, err := a.uploadService.SaveImage(file, config.GetProfileImageFolder())
		if err != nil {
			jsonMsg(c, "upload profile image", err)
			return
		}
		profileImage = path
	} else if fileErr != http.ErrMissingFile {
		jsonMsg(c, "upload profile image", fileErr)
		return
	}

	err := a.userService.UpdateProfile(user.Id,
		c.PostForm("name"), c.PostForm("email"),
		c.PostForm("phone"), c.PostForm("address"), profileImage)
	if err != nil {
		jsonMsg(c, "update profile", err)
		return
	}

	fresh, err := a.userService.GetUser(user.Id)
	if err == nil {
		session.SetLoginUser(c, fresh)
		if err := gsessions.Default(c).Save(); err != nil {
			logger.Warning("refresh session user:", err)
		}
	}
	jsonMsg(c, "profile updated", nil)
}

func (a *ProfileController) password(c *gin.Context) {
	user := session.GetLoginUser(c)
	current := c.PostForm("currentPassword")
	newPassword := c.PostForm("newPassword")
	confirm := c.PostForm("confirmPassword")

	if len(newPassword) < 6 {
		pureJsonMsg(c, http.StatusOK, false, "password must be at least 6 characters")
		return
	}
	if newPassword != confirm {
		pureJsonMsg(c, http.StatusOK, false, "passwords do not match")
		return
	}

	err := a.userService.UpdatePassword(user.Id, current, newPassword)
	jsonMsg(c, "password updated", err)
}

func (a *ProfileController) exportJSON(c *gin.Context) {
	user := session.GetLoginUser(c)
	data, err := a.exportService.ExportJSON(user.Id)
	if err != nil {
		jsonMsg(c, "export data", err)
		return
	}
	filename := fmt.Sprintf("qrpanel_export_%s.json", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/json", data)
}

func (a *ProfileController) exportCSV(c *gin.Context) {
	user := session.GetLoginUser(c)
	data, err := a.exportService.ExportCSV(user.Id)
	if err != nil {
		jsonMsg(c, "export data", err)
		return
	}
	filename := fmt.Sprintf("qrpanel_products_%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", data)
}

// deleteAccount removes the account after the user retypes their email as
// confirmation, then ends the session.
func (a *ProfileController) deleteAccount(c *gin.Context) {
	user := session.GetLoginUser(c)
	if c.PostForm("confirmEmail") != user.Email {
		pureJsonMsg(c, http.StatusOK, false, "email confirmation does not match")
		return
	}

	if err := a.userService.DeleteAccount(user.Id); err != nil {
		jsonMsg(c, "delete account", err)
		return
	}
	logger.Infof("account deleted: %s", user.Email)

	session.ClearSession(c)
	if err := gsessions.Default(c).Save(); err != nil {
		logger.Warning("clear session after account deletion:", err)
	}
	jsonMsg(c, "account deleted", nil)
}
