package handlers

import (
	"net/http"

	"nexusmarket/internal/middleware"

	"github.com/gin-gonic/gin"
)

// OK 统一的页面数据出口，注入当前用户方便前端渲染
func OK(c *gin.Context, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}
	if user := middleware.CurrentUser(c); user != nil {
		obj["currentUser"] = user
	}
	c.JSON(http.StatusOK, obj)
}

// Fail 错误出口，message 对用户可见
func Fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"error": message})
}
