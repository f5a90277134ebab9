package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/features/ppdb/registrant_files/model"
)

var ErrNotFound = errors.New("berkas tidak ditemukan")

type Repository interface {
	List(ctx context.Context, registrantID uuid.UUID) ([]model.RegistrantFile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.RegistrantFile, error)
	FindKind(ctx context.Context, registrantID uuid.UUID, kind string) ([]model.RegistrantFile, error)
	// Replace menyimpan f dan menghapus baris lama (ids) dalam satu transaksi.
	Replace(ctx context.Context, f *model.RegistrantFile, oldIDs []uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	Review(ctx context.Context, id uuid.UUID, status, note string, by uuid.UUID, at time.Time) (*model.RegistrantFile, error)
}

type gormRepo struct{ db *gorm.DB }

func New(db *gorm.DB) Repository { return &gormRepo{db: db} }

func (r *gormRepo) List(ctx context.Context, registrantID uuid.UUID) ([]model.RegistrantFile, error) {
	var rows []model.RegistrantFile
	err := r.db.WithContext(ctx).
		Where("registrant_id = ?", registrantID).
		Order("kind ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.RegistrantFile, error) {
	var f model.RegistrantFile
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *gormRepo) FindKind(ctx context.Context, registrantID uuid.UUID, kind string) ([]model.RegistrantFile, error) {
	var rows []model.RegistrantFile
	err := r.db.WithContext(ctx).
		Where("registrant_id = ? AND kind = ?", registrantID, kind).
		Find(&rows).Error
	return rows, err
}

func (r *gormRepo) Replace(ctx context.Context, f *model.RegistrantFile, oldIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(oldIDs) > 0 {
			if err := tx.Delete(&model.RegistrantFile{}, "id IN ?", oldIDs).Error; err != nil {
				return err
			}
		}
		return tx.Create(f).Error
	})
}

func (r *gormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.RegistrantFile{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepo) Review(ctx context.Context, id uuid.UUID, status, note string, by uuid.UUID, at time.Time) (*model.RegistrantFile, error) {
	res := r.db.WithContext(ctx).Model(&model.RegistrantFile{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":      status,
			"note":        note,
			"verified_by": by,
			"verified_at": at,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}
