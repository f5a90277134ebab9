package helper

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MapPGError mengubah error DB ke *fiber.Error (404/409/400/500).
func MapPGError(err error) error {
	if err == nil {
		return nil
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "Data tidak ditemukan")
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fiber.NewError(fiber.StatusConflict, "Data sudah ada")
	}

	code, detail := "", ""
	var pgErr *pgconn.PgError
	var pqErr *pq.Error
	switch {
	case errors.As(err, &pgErr):
		code, detail = pgErr.Code, pgErr.ConstraintName
	case errors.As(err, &pqErr):
		code, detail = string(pqErr.Code), pqErr.Constraint
	}

	switch code {
	case "23505":
		return fiber.NewError(fiber.StatusConflict, withConstraint("Data sudah ada", detail))
	case "23503":
		return fiber.NewError(fiber.StatusBadRequest, withConstraint("Referensi data tidak valid", detail))
	case "23502", "22P02", "23514":
		return fiber.NewError(fiber.StatusBadRequest, withConstraint("Input tidak valid", detail))
	case "57014":
		return fiber.NewError(fiber.StatusServiceUnavailable, "Query timeout")
	}
	return fiber.NewError(fiber.StatusInternalServerError, err.Error())
}

// IsUniqueViolation: SQLSTATE 23505 dari pgx/pq atau gorm.ErrDuplicatedKey.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func withConstraint(msg, constraint string) string {
	if strings.TrimSpace(constraint) == "" {
		return msg
	}
	return msg + " (" + constraint + ")"
}
