package auth

import (
	"context"
	"errors"

	"gorm.io/gorm"

	authModel "ppdb_backend/internals/features/users/auth/model"
)

// DBGuard: blacklist di tabel token_blacklist, status aktif di tabel users.
type DBGuard struct{ DB *gorm.DB }

func NewDBGuard(db *gorm.DB) *DBGuard { return &DBGuard{DB: db} }

func (g *DBGuard) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var n int64
	err := g.DB.WithContext(ctx).
		Model(&authModel.TokenBlacklist{}).
		Where("token_hash = ?", authModel.HashToken(token)).
		Count(&n).Error
	return n > 0, err
}

func (g *DBGuard) IsUserActive(ctx context.Context, userID string) (bool, error) {
	var row struct{ IsActive bool }
	err := g.DB.WithContext(ctx).
		Table("users").
		Select("is_active").
		Where("id = ? AND deleted_at IS NULL", userID).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err != nil {
		return false, err
	}
	return row.IsActive, nil
}
