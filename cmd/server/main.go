package main

import (
	"context"
	"log"

	"nexusmarket/internal/config"
	"nexusmarket/internal/middleware"
	"nexusmarket/internal/remote"
	"nexusmarket/internal/router"
	"nexusmarket/internal/services"
	"nexusmarket/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg := config.Load()

	// 远端托管服务的客户端，所有持久化和权威鉴权都在远端
	rc := remote.NewClient(cfg.ServiceURL, cfg.ServiceKey)
	authSvc := services.NewAuthService(rc)
	listingSvc := services.NewListingService(rc)

	// 应用状态由组合根创建并注入，见 store 包
	st := store.New(rc, authSvc, listingSvc)
	st.CheckSession(context.Background())

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	cookieStore := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("nexus_session", cookieStore))

	// Middleware
	r.Use(middleware.LoadUser(st, rc))

	router.RegisterRoutes(r, st, rc, listingSvc)

	log.Printf("Nexus Market server starting on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
