package router

import (
	"net/http"

	"nexusmarket/internal/handlers"
	"nexusmarket/internal/middleware"
	"nexusmarket/internal/remote"
	"nexusmarket/internal/services"
	"nexusmarket/internal/store"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, st *store.Store, rc *remote.Client, listingSvc *services.ListingService) {
	// Handlers
	authHandler := handlers.NewAuthHandler(st, rc)
	listingHandler := handlers.NewListingHandler(st, listingSvc)
	userHandler := handlers.NewUserHandler(st)
	adminHandler := handlers.NewAdminHandler(st, listingSvc)

	// 公共路由 (Public Routes)
	r.GET("/", listingHandler.Marketplace)     // 市场首页
	r.GET("/account/:id", listingHandler.Detail) // 挂单详情页

	r.GET("/login", authHandler.ShowLogin) // 登录页面
	r.POST("/login", authHandler.Login)    // 提交登录
	r.POST("/signup", authHandler.Register) // 提交注册
	r.GET("/logout", authHandler.Logout)   // 退出登录

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create-post", listingHandler.ShowCreate)  // 发布挂单页面
		authorized.POST("/create-post", listingHandler.Create)     // 提交发布挂单
		authorized.GET("/edit-post/:id", listingHandler.ShowEdit)  // 编辑挂单页面
		authorized.POST("/edit-post/:id", listingHandler.Update)   // 提交挂单更新
		authorized.DELETE("/account/:id", listingHandler.Delete)   // 删除挂单

		authorized.GET("/dashboard", userHandler.Dashboard) // 我的挂单

		authorized.GET("/profile", userHandler.Profile)              // 个人资料页面
		authorized.POST("/profile", userHandler.UpdateProfile)       // 提交资料更新
		authorized.POST("/profile/premium", userHandler.ApplyPremium) // 申请高级卖家
	}

	// 控制台路由 (Admin Routes)
	admin := r.Group("/control-panel")
	admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		admin.GET("", adminHandler.Panel)                           // 控制台总览
		admin.POST("/feature/:id", adminHandler.ToggleFeature)      // 推荐/取消推荐挂单
		admin.POST("/verify/:id", adminHandler.ToggleVerification)  // 切换用户认证
		admin.POST("/premium/:id", adminHandler.SetPremium)         // 审批高级卖家
		admin.DELETE("/listing/:id", adminHandler.DeleteListing)    // 删除任意挂单
	}

	// 未知路径统一跳回首页
	r.NoRoute(func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/")
	})
}
