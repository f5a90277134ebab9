package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ppdb_backend/internals/constants"
	jenjangModel "ppdb_backend/internals/features/master/jenjang/model"
	"ppdb_backend/internals/features/ppdb/registrants/dto"
	"ppdb_backend/internals/features/ppdb/registrants/model"
	fileModel "ppdb_backend/internals/features/ppdb/registrant_files/model"
	helper "ppdb_backend/internals/helpers"
)

var ErrNotFound = errors.New("registrant tidak ditemukan")

// QuotaReader dipakai di dalam transaksi status; baris jenjang dikunci.
type QuotaReader interface {
	JenjangQuota(jenjangID uuid.UUID) (quota int, accepted int64, err error)
}

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Registrant, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Registrant, error)
	Save(ctx context.Context, r *model.Registrant) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f dto.ListFilter, p helper.Params) ([]dto.RegistrantListItem, int64, error)

	// WithLocked memuat registrant FOR UPDATE, menjalankan fn, lalu menyimpan bila fn sukses.
	WithLocked(ctx context.Context, id uuid.UUID, fn func(r *model.Registrant, q QuotaReader) error) (*model.Registrant, error)

	Files(ctx context.Context, registrantID uuid.UUID) ([]fileModel.RegistrantFile, error)
	FindJenjang(ctx context.Context, id uuid.UUID) (*jenjangModel.Jenjang, error)
	ActiveExists(ctx context.Context, table string, id uuid.UUID) (bool, error)
	Names(ctx context.Context, jalurID, jenjangID *uuid.UUID) (jalur, jenjang string)
	Stats(ctx context.Context) (*dto.DashboardStats, error)
}

type gormRepo struct {
	db     *gorm.DB
	prefix string
	now    func() time.Time
}

// New: prefix dipakai untuk nomor pendaftaran (<PREFIX>-<tahun>-<urut>).
func New(db *gorm.DB, prefix string) *gormRepo {
	if strings.TrimSpace(prefix) == "" {
		prefix = "PPDB"
	}
	return &gormRepo{db: db, prefix: prefix, now: time.Now}
}

func (r *gormRepo) first(ctx context.Context, where string, arg any) (*model.Registrant, error) {
	var m model.Registrant
	if err := r.db.WithContext(ctx).Where(where, arg).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *gormRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Registrant, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormRepo) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Registrant, error) {
	return r.first(ctx, "user_id = ?", userID)
}

func (r *gormRepo) Save(ctx context.Context, m *model.Registrant) error {
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *gormRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Registrant{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

var listSort = map[string]string{
	"created_at":          "r.created_at",
	"submitted_at":        "r.submitted_at",
	"full_name":           "r.full_name",
	"registration_number": "r.registration_number",
	"status":              "r.status",
}

func (r *gormRepo) List(ctx context.Context, f dto.ListFilter, p helper.Params) ([]dto.RegistrantListItem, int64, error) {
	q := r.db.WithContext(ctx).
		Table("registrants r").
		Joins("LEFT JOIN jalur jl ON jl.id = r.jalur_id").
		Joins("LEFT JOIN jenjang jj ON jj.id = r.jenjang_id").
		Joins("LEFT JOIN users u ON u.id = r.user_id").
		Where("r.deleted_at IS NULL")

	if f.Status != "" {
		q = q.Where("r.status = ?", f.Status)
	}
	if f.JalurID != nil {
		q = q.Where("r.jalur_id = ?", *f.JalurID)
	}
	if f.JenjangID != nil {
		q = q.Where("r.jenjang_id = ?", *f.JenjangID)
	}
	if f.Gender != "" {
		q = q.Where("r.gender = ?", f.Gender)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + s + "%"
		q = q.Where("(r.full_name ILIKE ? OR r.registration_number ILIKE ? OR r.nisn ILIKE ?)", like, like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, _ := p.SafeOrderClause(listSort, "created_at")
	q = q.Select(`r.*,
		COALESCE(jl.name, '') AS jalur_name,
		COALESCE(jj.name, '') AS jenjang_name,
		COALESCE(u.email, '') AS email`).
		Order(order).Order("r.id")
	if !p.All {
		q = q.Limit(p.Limit()).Offset(p.Offset())
	}

	var rows []dto.RegistrantListItem
	if err := q.Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

type txQuota struct {
	tx *gorm.DB
}

func (q txQuota) JenjangQuota(jenjangID uuid.UUID) (int, int64, error) {
	var j jenjangModel.Jenjang
	if err := q.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&j, "id = ?", jenjangID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, fmt.Errorf("jenjang %s tidak ditemukan", jenjangID)
		}
		return 0, 0, err
	}
	var accepted int64
	if err := q.tx.Model(&model.Registrant{}).
		Where("jenjang_id = ? AND status = ?", jenjangID, constants.RegistrantAccepted).
		Count(&accepted).Error; err != nil {
		return 0, 0, err
	}
	return j.Quota, accepted, nil
}

func (r *gormRepo) WithLocked(ctx context.Context, id uuid.UUID, fn func(*model.Registrant, QuotaReader) error) (*model.Registrant, error) {
	var out model.Registrant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&out, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(&out, txQuota{tx: tx}); err != nil {
			return err
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *gormRepo) Files(ctx context.Context, registrantID uuid.UUID) ([]fileModel.RegistrantFile, error) {
	var rows []fileModel.RegistrantFile
	err := r.db.WithContext(ctx).
		Where("registrant_id = ?", registrantID).
		Order("kind ASC, created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepo) FindJenjang(ctx context.Context, id uuid.UUID) (*jenjangModel.Jenjang, error) {
	var j jenjangModel.Jenjang
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &j, nil
}

// ActiveExists: cek master (jalur/jenjang) ada & aktif.
func (r *gormRepo) ActiveExists(ctx context.Context, table string, id uuid.UUID) (bool, error) {
	switch table {
	case "jalur", "jenjang":
	default:
		return false, fmt.Errorf("tabel %q tidak didukung", table)
	}
	var n int64
	err := r.db.WithContext(ctx).Table(table).
		Where("id = ? AND is_active = TRUE AND deleted_at IS NULL", id).
		Count(&n).Error
	return n > 0, err
}

func (r *gormRepo) Names(ctx context.Context, jalurID, jenjangID *uuid.UUID) (string, string) {
	var jalur, jenjang string
	if jalurID != nil {
		r.db.WithContext(ctx).Table("jalur").Select("name").Where("id = ?", *jalurID).Scan(&jalur)
	}
	if jenjangID != nil {
		r.db.WithContext(ctx).Table("jenjang").Select("name").Where("id = ?", *jenjangID).Scan(&jenjang)
	}
	return jalur, jenjang
}
