package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/features/users/auth/model"
	helper "ppdb_backend/internals/helpers"
)

var ErrNotFound = errors.New("user tidak ditemukan")

type ListFilter struct {
	Role     string
	Q        string
	IsActive *bool
}

type Repository interface {
	FindByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	IsUsernameTaken(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, u *model.User) error
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	List(ctx context.Context, f ListFilter, p helper.Params) ([]model.User, int64, error)

	BlacklistToken(ctx context.Context, token string, expiredAt time.Time) error
	CleanupExpiredBlacklist(ctx context.Context, before time.Time) (int64, error)
}

type gormRepo struct{ db *gorm.DB }

func New(db *gorm.DB) Repository { return &gormRepo{db: db} }

/* ====================== USER ====================== */

func (r *gormRepo) first(ctx context.Context, query string, args ...any) (*model.User, error) {
	var u model.User
	err := r.db.WithContext(ctx).Where(query, args...).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *gormRepo) FindByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	identifier = strings.TrimSpace(identifier)
	return r.first(ctx, "LOWER(email) = LOWER(?) OR user_name = ?", identifier, identifier)
}

func (r *gormRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "LOWER(email) = LOWER(?)", strings.TrimSpace(email))
}

func (r *gormRepo) FindByGoogleID(ctx context.Context, googleID string) (*model.User, error) {
	return r.first(ctx, "google_id = ?", googleID)
}

func (r *gormRepo) IsUsernameTaken(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, errors.New("username cannot be empty")
	}
	var exists bool
	err := r.db.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM users WHERE user_name = ? AND deleted_at IS NULL)`, username).
		Scan(&exists).Error
	return exists, err
}

func (r *gormRepo) Create(ctx context.Context, u *model.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *gormRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepo) List(ctx context.Context, f ListFilter, p helper.Params) ([]model.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.IsActive != nil {
		q = q.Where("is_active = ?", *f.IsActive)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(user_name) LIKE ?", like, like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	order, err := p.SafeOrderClause(map[string]string{
		"created_at": "created_at",
		"full_name":  "full_name",
		"email":      "email",
	}, "created_at")
	if err != nil {
		return nil, 0, err
	}
	var rows []model.User
	err = q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error
	return rows, total, err
}

/* ====================== BLACKLIST TOKEN ====================== */

func (r *gormRepo) BlacklistToken(ctx context.Context, token string, expiredAt time.Time) error {
	return r.db.WithContext(ctx).
		Where(model.TokenBlacklist{TokenHash: model.HashToken(token)}).
		Attrs(model.TokenBlacklist{ExpiredAt: expiredAt.UTC()}).
		FirstOrCreate(&model.TokenBlacklist{}).Error
}

// CleanupExpiredBlacklist menghapus permanen token yang kedaluwarsa sebelum `before`.
func (r *gormRepo) CleanupExpiredBlacklist(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expired_at < ?", before.UTC()).
		Delete(&model.TokenBlacklist{})
	return res.RowsAffected, res.Error
}
