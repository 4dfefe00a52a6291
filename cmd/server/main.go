package main

import (
	"log"
	"net/http"

	_ "marketplace/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"marketplace/internal/auth"
	"marketplace/internal/cache"
	"marketplace/internal/config"
	"marketplace/internal/db"
	"marketplace/internal/handler"
	"marketplace/internal/mailer"
	"marketplace/internal/model"
	"marketplace/internal/repository"
	"marketplace/internal/router"
	"marketplace/internal/service"
)

// @title Marketplace API
// @version 1.0
// @description User management and product catalog with JWT authentication and role-based access.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	// Run migrations for all models
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	unitOfWork := repository.NewUnitOfWork(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTPAddr, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	recoveryService := service.NewPasswordRecoveryService(userRepo, tokenStore, smtpMailer)
	userService := service.NewUserService(userRepo, productRepo, unitOfWork, cacheClient)
	productService := service.NewProductService(productRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	recoveryHandler := handler.NewRecoveryHandler(recoveryService)
	userHandler := handler.NewUserHandler(userService)
	productHandler := handler.NewProductHandler(productService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		recoveryHandler,
		userHandler,
		productHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
