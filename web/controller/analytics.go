package controller

import (
	"strconv"

	"qrpanel/web/service"
	"qrpanel/web/session"

	"github.com/gin-gonic/gin"
)

// AnalyticsController serves the JSON data behind the analytics charts.
// Regular users see their own products' scans; admins may pass scope=all to
// see the whole system.
type AnalyticsController struct {
	scanService service.ScanService
}

func NewAnalyticsController(g *gin.RouterGroup) *AnalyticsController {
	a := &AnalyticsController{}
	a.initRouter(g)
	return a
}

func (a *AnalyticsController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/analytics")

	g.GET("/stats", a.stats)
	g.GET("/daily", a.daily)
	g.GET("/hourly", a.hourly)
	g.GET("/top", a.top)
	g.GET("/sources", a.sources)
	g.GET("/recent", a.recent)
}

// scopeUserId returns 0 (system-wide) for admins requesting scope=all,
// otherwise the session user's id.
func (a *AnalyticsController) scopeUserId(c *gin.Context) int {
	if c.Query("scope") == "all" && session.IsAdmin(c) {
		return 0
	}
	return session.GetLoginUser(c).Id
}

func (a *AnalyticsController) stats(c *gin.Context) {
	stats, err := a.scanService.GetScanStats(a.scopeUserId(c))
	if err != nil {
		jsonMsg(c, "load scan stats", err)
		return
	}
	jsonObj(c, stats, nil)
}

func (a *AnalyticsController) daily(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	counts, err := a.scanService.GetDailyCounts(a.scopeUserId(c), days)
	if err != nil {
		jsonMsg(c, "load daily counts", err)
		return
	}
	jsonObj(c, counts, nil)
}

func (a *AnalyticsController) hourly(c *gin.Context) {
	counts, err := a.scanService.GetHourlyHistogram(a.scopeUserId(c))
	if err != nil {
		jsonMsg(c, "load hourly histogram", err)
		return
	}
	jsonObj(c, counts, nil)
}

func (a *AnalyticsController) top(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	products, err := a.scanService.GetTopProducts(a.scopeUserId(c), limit)
	if err != nil {
		jsonMsg(c, "load top products", err)
		return
	}
	jsonObj(c, products, nil)
}

func (a *AnalyticsController) sources(c *gin.Context) {
	breakdown, err := a.scanService.GetSourceBreakdown(a.scopeUserId(c))
	if err != nil {
		jsonMsg(c, "load scan sources", err)
		return
	}
	jsonObj(c, breakdown, nil)
}

func (a *AnalyticsController) recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	activity, err := a.scanService.GetRecentActivity(a.scopeUserId(c), limit)
	if err != nil {
		jsonMsg(c, "load recent activity", err)
		return
	}
	jsonObj(c, activity, nil)
}
