package main

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/Yaesine/healthcare-appointment-system/docs"

	"github.com/Yaesine/healthcare-appointment-system/internal/auth"
	"github.com/Yaesine/healthcare-appointment-system/internal/cache"
	"github.com/Yaesine/healthcare-appointment-system/internal/config"
	"github.com/Yaesine/healthcare-appointment-system/internal/db"
	"github.com/Yaesine/healthcare-appointment-system/internal/handler"
	"github.com/Yaesine/healthcare-appointment-system/internal/model"
	"github.com/Yaesine/healthcare-appointment-system/internal/repository"
	"github.com/Yaesine/healthcare-appointment-system/internal/router"
	"github.com/Yaesine/healthcare-appointment-system/internal/service"
)

// @title Healthcare Appointment API
// @version 1.0
// @description Appointment booking API with JWT authentication and doctor double-booking protection.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log := logrus.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Env != "development" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Appointment{}); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	appointmentRepo := repository.NewAppointmentRepository(gormDB)

	// Initialize auth components; a weak secret refuses startup here
	jwtService, err := auth.NewJWTService(cfg.JWTSecret, cfg.JWTLifetime())
	if err != nil {
		log.Fatalf("jwt init: %v", err)
	}
	authenticator := auth.NewAuthenticator(jwtService)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService)
	appointmentService := service.NewAppointmentService(appointmentRepo, cacheClient)
	userService := service.NewUserService(userRepo, cacheClient)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentService)
	userHandler := handler.NewUserHandler(userService)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(echomiddleware.RequestID())

	router.Register(e, authenticator, authHandler, appointmentHandler, userHandler)

	log.WithFields(logrus.Fields{
		"port": cfg.ServerPort,
		"env":  cfg.Env,
	}).Info("starting server")

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
