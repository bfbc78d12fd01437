package controller

import (
	"strconv"

	"qrpanel/logger"
	"qrpanel/web/service"
	"qrpanel/web/session"

	"github.com/gin-gonic/gin"
)

// PanelController serves the authenticated pages and mounts the API
// sub-controllers. Admin-only pages sit behind an extra role check.
type PanelController struct {
	BaseController

	userService     service.UserService
	productService  service.ProductService
	categoryService service.CategoryService
	scanService     service.ScanService
	settingService  service.SettingService

	productController   *ProductController
	categoryController  *CategoryController
	analyticsController *AnalyticsController
	profileController   *ProfileController
	userAdminController *UserAdminController
	settingController   *SettingController
}

func NewPanelController(g *gin.RouterGroup) *PanelController {
	a := &PanelController{}
	a.initRouter(g)
	return a
}

func (a *PanelController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/panel")
	g.Use(a.checkLogin)

	g.GET("/", a.dashboard)
	g.GET("/products", a.products)
	g.GET("/categories", a.categories)
	g.GET("/qrcodes", a.qrcodes)
	g.GET("/analytics", a.analytics)
	g.GET("/profile", a.profile)

	a.productController = NewProductController(g)
	a.categoryController = NewCategoryController(g)
	a.analyticsController = NewAnalyticsController(g)
	a.profileController = NewProfileController(g)

	admin := g.Group("/admin")
	admin.Use(a.checkAdmin)
	admin.GET("/", a.adminDashboard)
	admin.GET("/users", a.adminUsers)
	admin.GET("/products", a.adminProducts)
	admin.GET("/scans", a.adminScans)
	admin.GET("/settings", a.adminSettings)

	a.userAdminController = NewUserAdminController(admin)
	a.settingController = NewSettingController(admin)
}

func (a *PanelController) dashboard(c *gin.Context) {
	user := session.GetLoginUser(c)
	stats, err := a.userService.GetUserStats(user.Id)
	if err != nil {
		logger.Warning("load dashboard stats:", err)
		stats = &service.UserStats{}
	}
	recent, err := a.scanService.GetRecentActivity(user.Id, 10)
	if err != nil {
		logger.Warning("load recent activity:", err)
	}
	html(c, "dashboard.html", "Dashboard", gin.H{
		"stats":  stats,
		"recent": recent,
	})
}

// productFilterFromQuery reads the list filters every product view accepts.
func productFilterFromQuery(c *gin.Context, pageSize int) service.ProductFilter {
	categoryId, _ := strconv.Atoi(c.Query("category"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	return service.ProductFilter{
		CategoryId: categoryId,
		Search:     c.Query("search"),
		Status:     c.DefaultQuery("status", "all"),
		Page:       page,
		Limit:      pageSize,
	}
}

func (a *PanelController) products(c *gin.Context) {
	user := session.GetLoginUser(c)
	pageSize, err := a.settingService.GetPageSize()
	if err != nil {
		pageSize = 12
	}
	filter := productFilterFromQuery(c, pageSize)

	products, total, err := a.productService.GetProducts(user.Id, filter)
	if err != nil {
		logger.Warning("load products:", err)
	}
	categories, err := a.categoryService.GetCategories(user.Id)
	if err != nil {
		logger.Warning("load categories:", err)
	}

	totalPages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	html(c, "products.html", "My Products", gin.H{
		"products":   products,
		"categories": categories,
		"filter":     filter,
		"total":      total,
		"totalPages": totalPages,
	})
}

func (a *PanelController) categories(c *gin.Context) {
	user := session.GetLoginUser(c)
	categories, err := a.categoryService.GetCategories(user.Id)
	if err != nil {
		logger.Warning("load categories:", err)
	}
	html(c, "categories.html", "Categories", gin.H{
		"categories": categories,
	})
}

func (a *PanelController) qrcodes(c *gin.Context) {
	user := session.GetLoginUser(c)
	pageSize, err := a.settingService.GetPageSize()
	if err != nil {
		pageSize = 12
	}
	filter := productFilterFromQuery(c, pageSize)

	products, total, err := a.productService.GetProducts(user.Id, filter)
	if err != nil {
		logger.Warning("load qr codes:", err)
	}
	totalPages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	html(c, "qrcodes.html", "QR Codes", gin.H{
		"products":   products,
		"filter":     filter,
		"total":      total,
		"totalPages": totalPages,
	})
}

func (a *PanelController) analytics(c *gin.Context) {
	html(c, "analytics.html", "Scan Analytics", nil)
}

func (a *PanelController) profile(c *gin.Context) {
	user := session.GetLoginUser(c)
	// the session copy can be stale after a profile update
	fresh, err := a.userService.GetUser(user.Id)
	if err != nil {
		logger.Warning("load profile:", err)
		fresh = user
	}
	stats, err := a.userService.GetUserStats(user.Id)
	if err != nil {
		stats = &service.UserStats{}
	}
	html(c, "profile.html", "My Profile", gin.H{
		"profile": fresh,
		"stats":   stats,
	})
}

func (a *PanelController) adminDashboard(c *gin.Context) {
	stats, err := a.scanService.GetSystemStats()
	if err != nil {
		logger.Warning("load system stats:", err)
		stats = &service.SystemStats{}
	}
	recent, err := a.scanService.GetRecentActivity(0, 10)
	if err != nil {
		logger.Warning("load system activity:", err)
	}
	html(c, "admin_dashboard.html", "Admin Dashboard", gin.H{
		"stats":  stats,
		"recent": recent,
	})
}

func (a *PanelController) adminUsers(c *gin.Context) {
	html(c, "admin_users.html", "Manage Users", nil)
}

func (a *PanelController) adminProducts(c *gin.Context) {
	pageSize, err := a.settingService.GetPageSize()
	if err != nil {
		pageSize = 12
	}
	filter := productFilterFromQuery(c, pageSize)

	products, total, err := a.productService.GetAllProducts(filter)
	if err != nil {
		logger.Warning("load all products:", err)
	}
	totalPages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	html(c, "admin_products.html", "All Products", gin.H{
		"products":   products,
		"filter":     filter,
		"total":      total,
		"totalPages": totalPages,
	})
}

func (a *PanelController) adminScans(c *gin.Context) {
	html(c, "admin_scans.html", "Scan Analytics", nil)
}

func (a *PanelController) adminSettings(c *gin.Context) {
	html(c, "admin_settings.html", "Settings", nil)
}
