// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	helper "ppdb_backend/internals/helpers"
)

// Locals yang diisi middleware
const (
	LocUserID   = "user_id"
	LocRole     = "userRole"
	LocUserName = "user_name"
	LocGender   = "gender"
	LocClaims   = "jwt_claims"
)

// Guard memeriksa status token & user di storage (DB).
type Guard interface {
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	IsUserActive(ctx context.Context, userID string) (bool, error)
}

type AuthJWTOpts struct {
	Secret              string
	Guard               Guard // opsional
	AllowCookieFallback bool  // pakai cookie access_token jika tidak ada Bearer
	Leeway              time.Duration
}

func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)
	if secret == "" {
		panic("AuthJWT: Secret wajib diisi")
	}
	if o.Leeway <= 0 {
		o.Leeway = 30 * time.Second
	}

	return func(c *fiber.Ctx) error {
		// 1) Ambil token
		raw, err := extractBearerToken(c, o.AllowCookieFallback)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		// 2) Cek blacklist
		if o.Guard != nil {
			black, err := o.Guard.IsBlacklisted(c.UserContext(), raw)
			if err != nil {
				zap.L().Error("cek blacklist gagal", zap.Error(err))
				return fiber.NewError(fiber.StatusInternalServerError, "Internal Server Error")
			}
			if black {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token is blacklisted")
			}
		}

		// 3) Parse + verifikasi algoritma (exp divalidasi manual dengan leeway)
		claims := jwt.MapClaims{}
		parser := jwt.Parser{SkipClaimsValidation: true}
		if _, err := parser.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(secret), nil
		}); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}
		if err := validateTokenExpiry(claims, o.Leeway); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		// 4) user_id + user aktif
		userID, err := extractUserID(claims)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Invalid or missing user ID")
		}
		if o.Guard != nil {
			active, err := o.Guard.IsUserActive(c.UserContext(), userID.String())
			if err != nil {
				return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - User not found")
			}
			if !active {
				return fiber.NewError(fiber.StatusForbidden, "Akun Anda telah dinonaktifkan")
			}
		}

		c.Locals(LocUserID, userID.String())
		c.Locals(LocClaims, claims)
		helper.RememberAccessToken(c, raw)
		storeBasicClaimsToLocals(c, claims)
		return c.Next()
	}
}
