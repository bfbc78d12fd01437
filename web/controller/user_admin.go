package controller

import (
	"strconv"

	"qrpanel/web/service"
	"qrpanel/web/session"

	"github.com/gin-gonic/gin"
)

// UserAdminController is the admin JSON API for the user lifecycle. It is
// mounted behind checkAdmin; admins cannot manage themselves here because
// the service only touches role='user' rows.
type UserAdminController struct {
	userAdminService service.UserAdminService
}

func NewUserAdminController(g *gin.RouterGroup) *UserAdminController {
	a := &UserAdminController{}
	a.initRouter(g)
	return a
}

func (a *UserAdminController) initRouter(g *gin.RouterGroup) {
	g = g.Group("/users")

	g.GET("/list", a.list)
	g.GET("/counts", a.counts)
	g.POST("/approve/:id", a.approve)
	g.POST("/block/:id", a.block)
	g.POST("/unblock/:id", a.unblock)
	g.POST("/del/:id", a.del)
}

func (a *UserAdminController) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "15"))
	filter := service.UserFilter{
		Status: c.DefaultQuery("status", "all"),
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	users, total, err := a.userAdminService.ListUsers(filter)
	if err != nil {
		jsonMsg(c, "load users", err)
		return
	}
	jsonObj(c, gin.H{"users": users, "total": total}, nil)
}

func (a *UserAdminController) counts(c *gin.Context) {
	counts, err := a.userAdminService.CountUsers()
	if err != nil {
		jsonMsg(c, "load user counts", err)
		return
	}
	jsonObj(c, counts, nil)
}

func (a *UserAdminController) userId(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		jsonMsg(c, "invalid user id", err)
		return 0, false
	}
	return id, true
}

func (a *UserAdminController) approve(c *gin.Context) {
	id, ok := a.userId(c)
	if !ok {
		return
	}
	err := a.userAdminService.ApproveUser(id)
	jsonMsg(c, "user approved", err)
}

func (a *UserAdminController) block(c *gin.Context) {
	id, ok := a.userId(c)
	if !ok {
		return
	}
	err := a.userAdminService.BlockUser(id)
	jsonMsg(c, "user blocked", err)
}

func (a *UserAdminController) unblock(c *gin.Context) {
	id, ok := a.userId(c)
	if !ok {
		return
	}
	err := a.userAdminService.UnblockUser(id)
	jsonMsg(c, "user unblocked", err)
}

func (a *UserAdminController) del(c *gin.Context) {
	id, ok := a.userId(c)
	if !ok {
		return
	}
	// an admin deleting their own session user would leave a dangling login
	if admin := session.GetLoginUser(c); admin != nil && admin.Id == id {
		pureJsonMsg(c, 200, false, "cannot delete your own account here")
		return
	}
	err := a.userAdminService.DeleteUser(id)
	jsonMsg(c, "user deleted", err)
}
