package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	loggerMw "schoolku_backend/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global dengan urutan yang benar:
// recovery paling luar, lalu CORS, access log, rate limiter, dan DB locals.
func SetupMiddlewares(app *fiber.App, db *gorm.DB) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(loggerMw.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
	app.Use(DBMiddleware(db))
}
