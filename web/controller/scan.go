package controller

import (
	"strconv"

	"qrpanel/database"
	"qrpanel/logger"
	"qrpanel/web/service"
	"qrpanel/web/session"

	"github.com/gin-gonic/gin"
)

// ScanController serves the public scan endpoint that QR codes link to. It
// requires no login: anyone who scans a code lands here.
type ScanController struct {
	scanService    service.ScanService
	settingService service.SettingService
}

func NewScanController(g *gin.RouterGroup) *ScanController {
	a := &ScanController{}
	a.initRouter(g)
	return a
}

func (a *ScanController) initRouter(g *gin.RouterGroup) {
	g.GET("/scan", a.scan)
}

// scan resolves the product behind a QR code, records the scan, and renders
// the product page. Missing, inactive, and malformed ids all render the
// same not-found page, and nothing is tracked for them.
func (a *ScanController) scan(c *gin.Context) {
	productId, err := strconv.Atoi(c.Query("id"))
	if err != nil || productId <= 0 {
		html(c, "scan_notfound.html", "Product Not Found", nil)
		return
	}

	view, err := a.scanService.FindActiveProduct(productId)
	if err != nil {
		if !database.IsNotFound(err) {
			logger.Warning("load scanned product:", err)
		}
		html(c, "scan_notfound.html", "Product Not Found", nil)
		return
	}

	var userId *int
	if user := session.GetLoginUser(c); user != nil {
		userId = &user.Id
	}
	a.scanService.TrackScan(productId, userId, getRemoteIp(c), c.Request.UserAgent(), "")

	contactEmail, err := a.settingService.GetContactEmail()
	if err != nil {
		logger.Warning("load contact email:", err)
	}
	html(c, "scan.html", view.Name, gin.H{
		"product":      view,
		"priceDisplay": service.FormatPrice(view.Price),
		"contactEmail": contactEmail,
	})
}
