package helper

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	LocAccessToken = "access_token"
	CookieAccess   = "access_token"
)

type ctxKey int

const requestIDKey ctxKey = iota

// AccessToken: token yang sudah diverifikasi AuthJWT, lalu header Bearer, lalu cookie.
func AccessToken(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocAccessToken).(string); ok && v != "" {
		return v
	}
	if v := BearerToken(c.Get(fiber.HeaderAuthorization)); v != "" {
		return v
	}
	return strings.TrimSpace(c.Cookies(CookieAccess))
}

// BearerToken memotong prefix "Bearer " (case-insensitive); "" kalau bukan bearer.
func BearerToken(header string) string {
	const p = "bearer "
	header = strings.TrimSpace(header)
	if len(header) <= len(p) || !strings.EqualFold(header[:len(p)], p) {
		return ""
	}
	return strings.TrimSpace(header[len(p):])
}

func RememberAccessToken(c *fiber.Ctx, raw string) {
	if raw = strings.TrimSpace(raw); raw != "" {
		c.Locals(LocAccessToken, raw)
	}
}

// WithRequestID menempelkan request id ke context supaya ikut tercatat di log SQL.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
