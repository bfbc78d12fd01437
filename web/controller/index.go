package controller

import (
	"errors"
	"net/http"
	"text/template"

	"qrpanel/logger"
	"qrpanel/web/service"
	"qrpanel/web/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// LoginForm is the login request body.
type LoginForm struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// RegisterForm is the registration request body.
type RegisterForm struct {
	Name            string `json:"name" form:"name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
	Phone           string `json:"phone" form:"phone"`
	Address         string `json:"address" form:"address"`
}

// IndexController handles the login, registration, and logout routes.
type IndexController struct {
	BaseController

	settingService service.SettingService
	userService    service.UserService
}

func NewIndexController(g *gin.RouterGroup) *IndexController {
	a := &IndexController{}
	a.initRouter(g)
	return a
}

func (a *IndexController) initRouter(g *gin.RouterGroup) {
	g.GET("/", a.index)
	g.GET("/register", a.registerPage)
	g.GET("/logout", a.logout)

	g.POST("/login", a.login)
	g.POST("/register", a.register)
}

// index shows the login page, or forwards straight to the panel when a
// session already exists.
func (a *IndexController) index(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, "panel/")
		return
	}
	html(c, "login.html", "Login", nil)
}

func (a *IndexController) registerPage(c *gin.Context) {
	if session.IsLogin(c) {
		c.Redirect(http.StatusTemporaryRedirect, "panel/")
		return
	}
	html(c, "register.html", "Create Account", nil)
}

// login authenticates by email and password. Pending and blocked accounts
// get their status-specific message instead of a generic failure.
func (a *IndexController) login(c *gin.Context) {
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "invalid form data")
		return
	}
	if form.Email == "" {
		pureJsonMsg(c, http.StatusOK, false, "please enter your email")
		return
	}
	if form.Password == "" {
		pureJsonMsg(c, http.StatusOK, false, "please enter your password")
		return
	}

	user, err := a.userService.CheckUser(form.Email, form.Password)
	if err != nil {
		safeEmail := template.HTMLEscapeString(form.Email)
		logger.Warningf("failed login for \"%s\", IP: \"%s\": %v", safeEmail, getRemoteIp(c), err)
		pureJsonMsg(c, http.StatusOK, false, err.Error())
		return
	}

	sessionMaxAge, err := a.settingService.GetSessionMaxAge()
	if err != nil {
		logger.Warning("unable to get session max age:", err)
	}

	session.SetMaxAge(c, sessionMaxAge*60)
	session.SetLoginUser(c, user)
	if err := sessions.Default(c).Save(); err != nil {
		logger.Warning("unable to save session:", err)
		return
	}

	logger.Infof("%s logged in, IP: %s", user.Email, getRemoteIp(c))
	jsonMsg(c, "login successful", nil)
}

// register creates a pending account. The user cannot log in until an admin
// approves it, and the response says so.
func (a *IndexController) register(c *gin.Context) {
	var form RegisterForm
	if err := c.ShouldBind(&form); err != nil {
		pureJsonMsg(c, http.StatusOK, false, "invalid form data")
		return
	}
	if form.Name == "" || form.Email == "" || form.Password == "" {
		pureJsonMsg(c, http.StatusOK, false, "name, email and password are required")
		return
	}
	if len(form.Password) < 6 {
		pureJsonMsg(c, http.StatusOK, false, "password must be at least 6 characters")
		return
	}
	if form.Password != form.ConfirmPassword {
		pureJsonMsg(c, http.StatusOK, false, "passwords do not match")
		return
	}

	user, err := a.userService.Register(form.Name, form.Email, form.Password, form.Phone, form.Address)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			pureJsonMsg(c, http.StatusOK, false, err.Error())
			return
		}
		jsonMsg(c, "registration", err)
		return
	}

	logger.Infof("new registration: %s (pending approval)", user.Email)
	jsonMsg(c, "account created, awaiting admin approval", nil)
}

func (a *IndexController) logout(c *gin.Context) {
	user := session.GetLoginUser(c)
	if user != nil {
		logger.Infof("%s logged out", user.Email)
	}
	session.ClearSession(c)
	if err := sessions.Default(c).Save(); err != nil {
		logger.Warning("unable to save session after clearing:", err)
	}
	c.Redirect(http.StatusTemporaryRedirect, c.GetString("base_path"))
}
