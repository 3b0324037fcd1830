package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"userhub/internal/config"
	apperrors "userhub/internal/errors"
	"userhub/internal/handler"
	"userhub/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	groupHandler *handler.GroupHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh-token", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/reset-password-request", authHandler.RequestPasswordReset)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	// Secured routes: the guard resolves the bearer token to its user
	// (signature, expiry, blacklist, existence) before any handler runs.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ContextKey: handler.UserContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.Authenticate(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			he := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
			return echo.NewHTTPError(he.StatusCode, he.ToErrorResponse())
		},
	}))

	// User routes
	secured.GET("/users/me", userHandler.Me)
	secured.PATCH("/users/me", userHandler.PatchMe)
	secured.DELETE("/users/me", userHandler.DeleteMe)
	secured.GET("/users", userHandler.ListUsers)
	secured.POST("/users/batch", userHandler.BatchUsers)
	secured.GET("/users/:id", userHandler.GetUser)
	secured.PATCH("/users/:id", userHandler.PatchUser)
	secured.DELETE("/users/:id", userHandler.DeleteUser)

	// Group routes (admin gated in the handler)
	secured.GET("/groups", groupHandler.ListGroups)
	secured.POST("/groups", groupHandler.CreateGroup)
	secured.GET("/groups/:id", groupHandler.GetGroup)
	secured.PATCH("/groups/:id", groupHandler.RenameGroup)
	secured.DELETE("/groups/:id", groupHandler.DeleteGroup)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
