package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/Yaesine/healthcare-appointment-system/internal/auth"
	"github.com/Yaesine/healthcare-appointment-system/internal/handler"
	"github.com/Yaesine/healthcare-appointment-system/internal/middleware"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	authenticator *auth.Authenticator,
	authHandler *handler.AuthHandler,
	appointmentHandler *handler.AppointmentHandler,
	userHandler *handler.UserHandler,
) {
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Secured routes: every request passes through the authenticator
	secured := api.Group("", middleware.Auth(authenticator))

	secured.GET("/me", userHandler.Me)

	secured.POST("/appointments", appointmentHandler.Create)
	secured.GET("/appointments", appointmentHandler.List)
	secured.GET("/appointments/:id", appointmentHandler.Get)
	secured.PUT("/appointments/:id", appointmentHandler.Update)
	secured.DELETE("/appointments/:id", appointmentHandler.Cancel)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
