package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"ppdb_backend/internals/features/users/auth/model"
)

// IssueAccessToken: JWT HS256 {id, sub, role, user_name, full_name, gender, iat, exp}.
func IssueAccessToken(u model.User, secret string, ttl time.Duration, now time.Time) (string, time.Time, error) {
	if secret == "" {
		return "", time.Time{}, errors.New("JWT_SECRET belum diset")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"id":        u.ID.String(),
		"sub":       u.ID.String(),
		"role":      u.Role,
		"user_name": u.UserName,
		"full_name": u.FullName,
		"gender":    u.Gender,
		"iat":       now.Unix(),
		"exp":       exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// TokenExpiry membaca exp token yang sudah diverifikasi middleware (tanpa validasi ulang).
// Fallback ke now+fallback bila exp tidak terbaca.
func TokenExpiry(raw string, fallback time.Duration) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, claims); err == nil {
		if exp, ok := claims["exp"].(float64); ok {
			return time.Unix(int64(exp), 0).UTC()
		}
	}
	return time.Now().UTC().Add(fallback)
}
