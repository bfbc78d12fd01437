package controller

import (
	"errors"
	"strconv"

	"qrpanel/web/service"
	"qrpanel/web/session"

	"github.com/gin-gonic/gin"
)

// CategoryForm is the create/update request body for categories.
type CategoryForm struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Color       string `json:"color" form:"color"`
}

// CategoryController is the JSON API for the owner's categories.
type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(g *gin.RouterGroup) *CategoryController {
	a := &CategoryController{}
	a.initRouter(g)
	return a
}

func (a *CategoryController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/category")

	g.GET("/list", a.list)
	g.POST("/create", a.create)
	g.POST("/update/:id", a.update)
	g.POST("/del/:id", a.del)
}

func (a *CategoryController) list(c *gin.Context) {
	user := session.GetLoginUser(c)
	categories, err := a.categoryService.GetCategories(user.Id)
	if err != nil {
		jsonMsg(c, "load categories", err)
		return
	}
	jsonObj(c, categories, nil)
}

func (a *CategoryController) create(c *gin.Context) {
	user := session.GetLoginUser(c)
	var form CategoryForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "invalid form data", err)
		return
	}
	category, err := a.categoryService.CreateCategory(user.Id, form.Name, form.Description, form.Color)
	if err != nil {
		jsonMsg(c, "create category", err)
		return
	}
	jsonMsgObj(c, "category created", category, nil)
}

func (a *CategoryController) update(c *gin.Context) {
	user := session.GetLoginUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid category id", err)
		return
	}
	var form CategoryForm
	if err := c.ShouldBind(&form); err != nil {
		jsonMsg(c, "invalid form data", err)
		return
	}
	err = a.categoryService.UpdateCategory(user.Id, id, form.Name, form.Description, form.Color)
	jsonMsg(c, "category updated", err)
}

func (a *CategoryController) del(c *gin.Context) {
	user := session.GetLoginUser(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid category id", err)
		return
	}
	err = a.categoryService.DeleteCategory(user.Id, id)
	if errors.Is(err, service.ErrCategoryHasProducts) {
		pureJsonMsg(c, 200, false, err.Error())
		return
	}
	jsonMsg(c, "category deleted", err)
}
