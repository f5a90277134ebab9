package middlewares

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	helper "ppdb_backend/internals/helpers"
)

// ErrorHandler merender semua error ke bentuk standar {success:false, message, error_code}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Terjadi kesalahan pada server"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	if code >= 500 {
		zap.L().Error("❌ request error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Any("reqid", c.Locals(LocRequestID)),
			zap.Error(err),
		)
	}
	return helper.JsonError(c, code, msg)
}
