package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "nuance/backend/docs"
	"nuance/backend/internal/handler"
	"nuance/backend/internal/service"
)

func NewRouter(
	authService service.AuthService,
	authHandler *handler.AuthHandler,
	translateHandler *handler.TranslateHandler,
	historyHandler *handler.HistoryHandler,
	settingsHandler *handler.SettingsHandler,
	staticDir string,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware())

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")
	authHandler.RegisterPublicRoutes(api)

	protected := api.Group("", JWTAuthMiddleware(authService))
	authHandler.RegisterProtectedRoutes(protected)
	translateHandler.RegisterRoutes(protected)
	historyHandler.RegisterRoutes(protected)
	settingsHandler.RegisterRoutes(protected)

	registerStatic(e, staticDir)

	return e
}
