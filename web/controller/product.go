package controller

import (
	"net/http"
	"strconv"

	"qrpanel/config"
	"qrpanel/web/service"
	"qrpanel/web/session"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductController is the JSON API for product CRUD, status toggling, and
// QR regeneration. Every operation is scoped to the logged-in owner.
type ProductController struct {
	productService service.ProductService
	qrService      service.QRService
	uploadService  service.UploadService
	settingService service.SettingService
}

func NewProductController(g *gin.RouterGroup) *ProductController {
	a := &ProductController{}
	a.initRouter(g)
	return a
}

func (a *ProductController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/product")

	g.GET("/list", a.list)
	g.GET("/get/:id", a.get)
	g.POST("/create", a.create)
	g.POST("/update/:id", a.update)
	g.POST("/del/:id", a.del)
	g.POST("/toggle/:id", a.toggle)
	g.POST("/qr/regenerate/:id", a.regenerateQR)
}

func (a *ProductController) list(c *gin.Context) {
	user := session.GetLoginUser(c)
	pageSize, err := a.settingService.GetPageSize()
	if err != nil {
		pageSize = 12
	}
	filter := productFilterFromQuery(c, pageSize)
	if limit, convErr := strconv.Atoi(c.Query("limit")); convErr == nil && limit > 0 {
		filter.Limit = limit
	}

	products, total, err := a.productService.GetProducts(user.Id, filter)
	if err != nil {
		jsonMsg(c, "load products", err)
		return
	}
	jsonObj(c, gin.H{"products": products, "total": total}, nil)
}

func (a *ProductController) get(c *gin.Context) {
	user := session.GetLoginUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid product id", err)
		return
	}
	product, err := a.productService.GetProduct(user.Id, id)
	if err != nil {
		jsonMsg(c, "load product", err)
		return
	}
	jsonObj(c, product, nil)
}

// productForm parses the shared multipart fields of create and update. The
// image file is optional; when present it is validated, resized, and stored
// before the database is touched.
func (a *ProductController) productForm(c *gin.Context) (categoryId *int, name string, price decimal.Decimal, description, image string, err error) {
	name = c.PostForm("name")
	description = c.PostForm("description")

	price, err = decimal.NewFromString(c.PostForm("price"))
	if err != nil {
		return
	}

	if raw := c.PostForm("categoryId"); raw != "" {
		id, convErr := strconv.Atoi(raw)
		if convErr != nil {
			err = convErr
			return
		}
		if id > 0 {
			categoryId = &id
		}
	}

	file, fileErr := c.FormFile("image")
	if fileErr == nil {
		image, err = a.uploadService.SaveImage(file, config.GetProductImageFolder())
		if err != nil {
			return
		}
	} else if fileErr != http.ErrMissingFile {
		err = fileErr
	}
	return
}

func (a *ProductController) create(c *gin.Context) {
	user := session.GetLoginUser(c)
	categoryId, name, price, description, image, err := a.productForm(c)
	if err != nil {
		jsonMsg(c, "create product", err)
		return
	}
	product, err := a.productService.CreateProduct(user.Id, categoryId, name, price, description, image)
	if err != nil {
		jsonMsg(c, "create product", err)
		return
	}
	jsonMsgObj(c, "product created, QR code is being generated", product, nil)
}

func (a *ProductController) update(c *gin.Context) {
	user := session.GetLoginUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid product id", err)
		return
	}
	categoryId, name, price, description, image, err := a.productForm(c)
	if err != nil {
		jsonMsg(c, "update product", err)
		return
	}
	err = a.productService.UpdateProduct(user.Id, id, categoryId, name, price, description, image)
	jsonMsg(c, "product updated", err)
}

func (a *ProductController) del(c *gin.Context) {
	user := session.GetLoginUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid product id", err)
		return
	}
	err = a.productService.DeleteProduct(user.Id, id)
	jsonMsg(c, "product deleted", err)
}

func (a *ProductController) toggle(c *gin.Context) {
	user := session.GetLoginUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid product id", err)
		return
	}
	active := c.PostForm("active") == "true"
	err = a.productService.SetActive(user.Id, id, active)
	jsonMsg(c, "product status updated", err)
}

func (a *ProductController) regenerateQR(c *gin.Context) {
	user := session.GetLoginUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid product id", err)
		return
	}
	err = a.qrService.Regenerate(user.Id, id)
	jsonMsg(c, "QR code queued for regeneration", err)
}
