package middleware

import (
	"net/http"

	"nexusmarket/internal/models"
	"nexusmarket/internal/remote"
	"nexusmarket/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const CheckUserKey = "user"

// cookie 里保存的远端 token，进程重启后用来恢复会话
const (
	SessionAccessToken  = "access_token"
	SessionRefreshToken = "refresh_token"
)

// LoadUser 恢复会话并把当前用户放进请求上下文。
// store 里还没有用户但 cookie 里有 token 时，先恢复远端会话再 CheckSession
func LoadUser(st *store.Store, rc *remote.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if st.User() == nil {
			session := sessions.Default(c)
			access, _ := session.Get(SessionAccessToken).(string)
			refresh, _ := session.Get(SessionRefreshToken).(string)
			if access != "" {
				if err := rc.RestoreSession(access, refresh); err == nil {
					st.CheckSession(c.Request.Context())
				}
			}
		}

		if user := st.User(); user != nil {
			c.Set(CheckUserKey, user)
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CheckUserKey); !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired 管理员专属路由
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, exists := c.Get(CheckUserKey)
		if !exists || u.(*models.User).Role != models.RoleAdmin {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// CurrentUser 从上下文取当前用户，未登录返回 nil
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CheckUserKey); exists {
		return u.(*models.User)
	}
	return nil
}
