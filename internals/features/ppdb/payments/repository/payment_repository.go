package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ppdb_backend/internals/constants"
	biayaModel "ppdb_backend/internals/features/master/biaya/model"
	"ppdb_backend/internals/features/ppdb/payments/model"
	helper "ppdb_backend/internals/helpers"
)

var ErrNotFound = errors.New("pembayaran tidak ditemukan")

type ListFilter struct {
	Status       string
	Method       string
	BiayaID      *uuid.UUID
	RegistrantID *uuid.UUID
	From         *time.Time
	To           *time.Time
	Q            string
}

// Item list admin: payment + info pendaftar & biaya.
type PaymentListItem struct {
	model.Payment
	RegistrationNumber string `json:"registration_number"`
	RegistrantName     string `json:"registrant_name"`
	BiayaName          string `json:"biaya_name"`
}

type Repository interface {
	ActiveBiaya(ctx context.Context) ([]biayaModel.Biaya, error)
	FindBiaya(ctx context.Context, id uuid.UUID) (*biayaModel.Biaya, error)
	ForRegistrant(ctx context.Context, registrantID uuid.UUID) ([]model.Payment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error)
	FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error)
	Create(ctx context.Context, p *model.Payment) error
	List(ctx context.Context, f ListFilter, p helper.Params) ([]PaymentListItem, int64, error)

	// WithLocked memuat payment FOR UPDATE, menjalankan fn, lalu menyimpan bila fn sukses.
	WithLocked(ctx context.Context, id uuid.UUID, fn func(p *model.Payment) error) (*model.Payment, error)

	LogEvent(ctx context.Context, ev *model.PaymentGatewayEvent) error
	FinishEvent(ctx context.Context, id uuid.UUID, status, errMsg string, at time.Time) error

	// ExpireGateway menolak pembayaran gateway yang masih pending sebelum 'before'.
	ExpireGateway(ctx context.Context, before time.Time, note string) ([]model.Payment, error)
}

type gormRepo struct{ db *gorm.DB }

func New(db *gorm.DB) Repository { return &gormRepo{db: db} }

func (r *gormRepo) ActiveBiaya(ctx context.Context) ([]biayaModel.Biaya, error) {
	var rows []biayaModel.Biaya
	err := r.db.WithContext(ctx).
		Where("is_active = TRUE").
		Order("sort_order ASC, name ASC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepo) FindBiaya(ctx context.Context, id uuid.UUID) (*biayaModel.Biaya, error) {
	var b biayaModel.Biaya
	if err := r.db.WithContext(ctx).Unscoped().First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *gormRepo) ForRegistrant(ctx context.Context, registrantID uuid.UUID) ([]model.Payment, error) {
	var rows []model.Payment
	err := r.db.WithContext(ctx).
		Where("registrant_id = ?", registrantID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *gormRepo) first(ctx context.Context, where string, arg any) (*model.Payment, error) {
	var p model.Payment
	if err := r.db.WithContext(ctx).Where(where, arg).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *gormRepo) FindByExternalID(ctx context.Context, externalID string) (*model.Payment, error) {
	return r.first(ctx, "external_id = ?", externalID)
}

func (r *gormRepo) Create(ctx context.Context, p *model.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

var listSort = map[string]string{
	"created_at":  "p.created_at",
	"amount":      "p.amount_idr",
	"status":      "p.status",
	"verified_at": "p.verified_at",
}

func (r *gormRepo) List(ctx context.Context, f ListFilter, p helper.Params) ([]PaymentListItem, int64, error) {
	q := r.db.WithContext(ctx).
		Table("payments p").
		Joins("JOIN registrants r ON r.id = p.registrant_id").
		Joins("LEFT JOIN biaya b ON b.id = p.biaya_id").
		Where("p.deleted_at IS NULL")

	if f.Status != "" {
		q = q.Where("p.status = ?", f.Status)
	}
	if f.Method != "" {
		q = q.Where("p.method = ?", f.Method)
	}
	if f.BiayaID != nil {
		q = q.Where("p.biaya_id = ?", *f.BiayaID)
	}
	if f.RegistrantID != nil {
		q = q.Where("p.registrant_id = ?", *f.RegistrantID)
	}
	if f.From != nil {
		q = q.Where("p.created_at >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("p.created_at < ?", *f.To)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + s + "%"
		q = q.Where("(r.full_name ILIKE ? OR r.registration_number ILIKE ?)", like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order, _ := p.SafeOrderClause(listSort, "created_at")
	var rows []PaymentListItem
	err := q.Select(`p.*,
		r.registration_number AS registration_number,
		r.full_name AS registrant_name,
		COALESCE(b.name, '') AS biaya_name`).
		Order(order).Order("p.id").
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *gormRepo) WithLocked(ctx context.Context, id uuid.UUID, fn func(*model.Payment) error) (*model.Payment, error) {
	var out model.Payment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&out, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := fn(&out); err != nil {
			return err
		}
		return tx.Save(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *gormRepo) LogEvent(ctx context.Context, ev *model.PaymentGatewayEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *gormRepo) FinishEvent(ctx context.Context, id uuid.UUID, status, errMsg string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.PaymentGatewayEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": status, "error": errMsg, "processed_at": at}).Error
}

func (r *gormRepo) ExpireGateway(ctx context.Context, before time.Time, note string) ([]model.Payment, error) {
	var rows []model.Payment
	err := r.db.WithContext(ctx).Model(&rows).
		Clauses(clause.Returning{}).
		Where("method = ? AND status = ? AND created_at < ?", constants.PaymentGateway, constants.ReviewPending, before).
		Updates(map[string]any{
			"status":     constants.ReviewRejected,
			"admin_note": note,
			"updated_at": time.Now(),
		}).Error
	return rows, err
}
