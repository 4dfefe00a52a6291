package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"marketplace/internal/config"
	"marketplace/internal/handler"
	"marketplace/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	recoveryHandler *handler.RecoveryHandler,
	userHandler *handler.UserHandler,
	productHandler *handler.ProductHandler,
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
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/recovery", recoveryHandler.RequestRecovery)
	api.POST("/auth/recovery/reset", recoveryHandler.ResetPassword)

	// Catalog reads are public
	api.GET("/products/search", productHandler.SearchProducts)
	api.GET("/products/:id", productHandler.GetProduct)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	secured.POST("/products", productHandler.CreateProduct)
	secured.PUT("/products/:id", productHandler.UpdateProduct)
	secured.DELETE("/products/:id", productHandler.DeleteProduct)
	secured.GET("/users/:id/products", productHandler.ListUserProducts)

	secured.GET("/users/:id", userHandler.GetUser)
	secured.PUT("/users/:id", userHandler.UpdateUser)
	secured.POST("/users/:id/password", userHandler.ChangePassword)

	// Admin-only user management
	admin := secured.Group("", RequireRole(model.RoleAdmin))
	admin.GET("/users", userHandler.ListUsers)
	admin.POST("/users", userHandler.CreateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)
	admin.PATCH("/users/:id/deactivate", userHandler.DeactivateUser)
	admin.PATCH("/users/:id/reactivate", userHandler.ReactivateUser)
	admin.POST("/users/:id/role", userHandler.AssignRole)
}

// RequireRole rejects requests whose JWT role claim does not match.
func RequireRole(role model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			claimed, _ := claims["role"].(string)
			if model.Role(claimed) != role {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
