package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/configs"
	"ppdb_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global (urutan penting: recover paling luar).
func SetupMiddlewares(app *fiber.App, cfg configs.AppConfig) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware(cfg.CorsOrigins))
	app.Use(logger.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}
