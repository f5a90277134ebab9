package logger

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// Path yang tidak dicatat: health check & webhook (payload gateway sudah dilog ke DB).
var skipPaths = []string{"/health", "/api/public/payments/midtrans/notification"}

func skip(c *fiber.Ctx) bool {
	p := c.Path()
	for _, s := range skipPaths {
		if p == s || strings.HasPrefix(p, s+"/") {
			return true
		}
	}
	return false
}

// LoggerMiddleware: access log per request, role & request id ikut dicatat.
func LoggerMiddleware() fiber.Handler {
	return logger.New(logger.Config{
		Next:       skip,
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Format:     "[${time}] ${ip} - ${method} ${path} - ${status} - ${latency} - role=${locals:userRole} - ${locals:reqid}\n",
	})
}
