package session

import (
	"encoding/gob"

	"qrpanel/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	loginUser = "LOGIN_USER"
	flashKey  = "FLASH"
)

// Flash is a one-time notice stored in the session and cleared on read.
type Flash struct {
	Type    string
	Message string
}

func init() {
	gob.Register(model.User{})
	gob.Register(Flash{})
}

func SetLoginUser(c *gin.Context, user *model.User) error {
	s := sessions.Default(c)
	s.Set(loginUser, *user)
	return s.Save()
}

func SetMaxAge(c *gin.Context, maxAge int) error {
	s := sessions.Default(c)
	s.Options(sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
	})
	return s.Save()
}

func GetLoginUser(c *gin.Context) *model.User {
	s := sessions.Default(c)
	if obj := s.Get(loginUser); obj != nil {
		if user, ok := obj.(model.User); ok {
			return &user
		}
	}
	return nil
}

func IsLogin(c *gin.Context) bool {
	return GetLoginUser(c) != nil
}

func IsAdmin(c *gin.Context) bool {
	user := GetLoginUser(c)
	return user != nil && user.Role == model.RoleAdmin
}

// SetFlash stores a one-time notice. typ is "success" or "error".
func SetFlash(c *gin.Context, typ, message string) {
	s := sessions.Default(c)
	s.Set(flashKey, Flash{Type: typ, Message: message})
	_ = s.Save()
}

// PopFlash returns the pending notice, clearing it so it renders only once.
func PopFlash(c *gin.Context) *Flash {
	s := sessions.Default(c)
	obj := s.Get(flashKey)
	if obj == nil {
		return nil
	}
	s.Delete(flashKey)
	_ = s.Save()
	if f, ok := obj.(Flash); ok {
		return &f
	}
	return nil
}

func ClearSession(c *gin.Context) error {
	s := sessions.Default(c)
	s.Clear()
	s.Options(sessions.Options{
		Path:   "/",
		MaxAge: -1,
	})
	if err := s.Save(); err != nil {
		return err
	}
	c.SetCookie("qrpanel", "", -1, "/", "", false, true)
	return nil
}
