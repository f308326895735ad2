package handlers

import (
	"errors"
	"net/http"

	"nexusmarket/internal/middleware"
	"nexusmarket/internal/remote"
	"nexusmarket/internal/services"
	"nexusmarket/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	store  *store.Store
	remote *remote.Client
}

func NewAuthHandler(st *store.Store, rc *remote.Client) *AuthHandler {
	return &AuthHandler{store: st, remote: rc}
}

// ShowLogin 登录页数据。auth 流程的错误留在共享状态里持续展示，直到被清掉
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	OK(c, gin.H{"error": h.store.Err()})
}

func (h *AuthHandler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")

	user, err := h.store.Login(c.Request.Context(), email, password)
	if err != nil {
		code := http.StatusUnauthorized
		if errors.Is(err, services.ErrPasswordRequired) {
			code = http.StatusBadRequest
		}
		Fail(c, code, err.Error())
		return
	}

	h.persistSession(c)
	OK(c, gin.H{"user": user})
}

func (h *AuthHandler) Register(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")
	password := c.PostForm("password")
	adminSecret := c.PostForm("adminSecret")

	if username == "" || email == "" {
		Fail(c, http.StatusBadRequest, "username and email are required")
		return
	}
	if len(password) < 6 {
		Fail(c, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	user, err := h.store.Register(c.Request.Context(), username, password, email, adminSecret)
	if err != nil {
		Fail(c, http.StatusConflict, err.Error())
		return
	}

	h.persistSession(c)
	OK(c, gin.H{"user": user})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.store.Logout(c.Request.Context())

	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

// persistSession 把远端 token 写进 cookie，进程重启后还能恢复登录
func (h *AuthHandler) persistSession(c *gin.Context) {
	sess := h.remote.Session()
	if sess == nil {
		return
	}
	session := sessions.Default(c)
	session.Set(middleware.SessionAccessToken, sess.AccessToken)
	session.Set(middleware.SessionRefreshToken, sess.RefreshToken)
	session.Save()
}
