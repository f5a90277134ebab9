package helper

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ValidationError mengubah validator.ValidationErrors jadi 422 dengan pesan per field.
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return JsonError(c, fiber.StatusBadRequest, "Input tidak valid")
	}
	return JsonValidationError(c, ValidationMessages(ve))
}

// ValidationMessages memetakan error validator ke pesan berbahasa Indonesia.
// Key memakai nama field JSON bila tersedia (lihat RegisterJSONTagName).
func ValidationMessages(ve validator.ValidationErrors) map[string][]string {
	out := make(map[string][]string, len(ve))
	for _, fe := range ve {
		field := fe.Field()
		var msg string
		switch fe.Tag() {
		case "required", "required_without":
			msg = field + " wajib diisi"
		case "email":
			msg = "format email tidak valid"
		case "min":
			msg = field + " minimal " + fe.Param()
		case "max":
			msg = field + " maksimal " + fe.Param()
		case "len":
			msg = field + " harus " + fe.Param() + " karakter"
		case "numeric":
			msg = field + " harus berupa angka"
		case "oneof":
			msg = field + " harus salah satu dari: " + strings.ReplaceAll(fe.Param(), " ", ", ")
		case "datetime":
			msg = field + " harus berformat " + fe.Param()
		case "gt", "gte":
			msg = field + " harus lebih besar dari " + fe.Param()
		case "url":
			msg = field + " harus berupa URL"
		case "phone_id":
			msg = field + " bukan nomor HP yang valid"
		default:
			msg = field + " tidak valid"
		}
		out[field] = append(out[field], msg)
	}
	return out
}
