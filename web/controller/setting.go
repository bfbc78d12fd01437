package controller

import (
	"qrpanel/web/entity"
	"qrpanel/web/service"

	"github.com/gin-gonic/gin"
)

// SettingController is the admin JSON API for application settings and the
// host status widget.
type SettingController struct {
	settingService service.SettingService
	statusService  service.StatusService
}

func NewSettingController(g *gin.RouterGroup) *SettingController {
	a := &SettingController{}
	a.initRouter(g)
	return a
}

func (a *SettingController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/setting")

	g.GET("/all", a.getAllSetting)
	g.POST("/update", a.updateSetting)
	g.POST("/reset", a.resetSetting)
	g.GET("/status", a.serverStatus)
}

func (a *SettingController) getAllSetting(c *gin.Context) {
	allSetting, err := a.settingService.GetAllSetting()
	if err != nil {
		jsonMsg(c, "load settings", err)
		return
	}
	jsonObj(c, allSetting, nil)
}

// updateSetting persists the whole settings struct. Port and base path
// changes take effect on the next restart.
func (a *SettingController) updateSetting(c *gin.Context) {
	allSetting := &entity.AllSetting{}
	if err := c.ShouldBind(allSetting); err != nil {
		jsonMsg(c, "invalid form data", err)
		return
	}
	if err := allSetting.CheckValid(); err != nil {
		jsonMsg(c, "invalid settings", err)
		return
	}
	err := a.settingService.UpdateAllSetting(allSetting)
	jsonMsg(c, "settings updated", err)
}

func (a *SettingController) resetSetting(c *gin.Context) {
	err := a.settingService.ResetSettings()
	jsonMsg(c, "settings reset to defaults", err)
}

func (a *SettingController) serverStatus(c *gin.Context) {
	jsonObj(c, a.statusService.GetStatus(), nil)
}
