package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	contactModel "ppdb_backend/internals/features/master/contacts/model"
	"ppdb_backend/internals/features/whatsapp/model"
	helper "ppdb_backend/internals/helpers"
)

var ErrNotFound = errors.New("data tidak ditemukan")

// RegistrantInfo: data pendaftar yang dibutuhkan untuk variabel pesan.
type RegistrantInfo struct {
	ID                 uuid.UUID `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	FullName           string    `json:"full_name"`
	Gender             string    `json:"gender"`
	Status             string    `json:"status"`
	Phone              string    `json:"phone"`
	FatherPhone        string    `json:"father_phone"`
	MotherPhone        string    `json:"mother_phone"`
	GuardianPhone      string    `json:"guardian_phone"`
	JalurName          string    `json:"jalur_name"`
	JenjangName        string    `json:"jenjang_name"`
}

// ContactPhone: nomor pendaftar, fallback ke nomor orang tua/wali.
func (r RegistrantInfo) ContactPhone() string {
	for _, p := range []string{r.Phone, r.FatherPhone, r.MotherPhone, r.GuardianPhone} {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}
	return ""
}

type RegistrantFilter struct {
	Status    string
	Gender    string
	JalurID   *uuid.UUID
	JenjangID *uuid.UUID
}

type LogFilter struct {
	Status       string
	Event        string
	RegistrantID *uuid.UUID
	Q            string
}

type Repository interface {
	ListTemplates(ctx context.Context, code, audience string, p helper.Params) ([]model.Template, int64, error)
	FindTemplate(ctx context.Context, id uuid.UUID) (*model.Template, error)
	CreateTemplate(ctx context.Context, t *model.Template) error
	SaveTemplate(ctx context.Context, t *model.Template) error
	DeleteTemplate(ctx context.Context, id uuid.UUID) error
	TemplatesFor(ctx context.Context, code string) ([]model.Template, error)

	// Contacts: kontak aktif untuk role. gender != "" → gender sama + kontak tanpa gender.
	Contacts(ctx context.Context, role, gender string) ([]contactModel.Contact, error)
	Registrant(ctx context.Context, id uuid.UUID) (*RegistrantInfo, error)
	Registrants(ctx context.Context, f RegistrantFilter) ([]RegistrantInfo, error)

	CreateLogs(ctx context.Context, logs []model.DispatchLog) error
	ListLogs(ctx context.Context, f LogFilter, p helper.Params) ([]model.DispatchLog, int64, error)
}

type gormRepo struct{ db *gorm.DB }

func New(db *gorm.DB) Repository { return &gormRepo{db: db} }

/* ========== templates ========== */

func (r *gormRepo) ListTemplates(ctx context.Context, code, audience string, p helper.Params) ([]model.Template, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Template{})
	if code != "" {
		q = q.Where("code = ?", code)
	}
	if audience != "" {
		q = q.Where("audience = ?", audience)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.Template
	err := q.Order("code ASC, audience ASC, gender ASC").
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error
	return rows, total, err
}

func (r *gormRepo) FindTemplate(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	var t model.Template
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *gormRepo) CreateTemplate(ctx context.Context, t *model.Template) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *gormRepo) SaveTemplate(ctx context.Context, t *model.Template) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *gormRepo) DeleteTemplate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Template{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormRepo) TemplatesFor(ctx context.Context, code string) ([]model.Template, error) {
	var rows []model.Template
	err := r.db.WithContext(ctx).
		Where("code = ? AND is_active = TRUE", code).
		Find(&rows).Error
	return rows, err
}

/* ========== penerima ========== */

func (r *gormRepo) Contacts(ctx context.Context, role, gender string) ([]contactModel.Contact, error) {
	q := r.db.WithContext(ctx).Where("role = ? AND is_active = TRUE", role)
	if gender != "" {
		q = q.Where("(gender = ? OR gender = '')", gender)
	}
	var rows []contactModel.Contact
	err := q.Order("name ASC").Find(&rows).Error
	return rows, err
}

const registrantInfoSQL = `
SELECT r.id, r.registration_number, r.full_name, r.gender, r.status,
       r.phone, r.father_phone, r.mother_phone, r.guardian_phone,
       COALESCE(j.name, '') AS jalur_name,
       COALESCE(k.name, '') AS jenjang_name
FROM registrants r
LEFT JOIN jalur j ON j.id = r.jalur_id
LEFT JOIN jenjang k ON k.id = r.jenjang_id
WHERE r.deleted_at IS NULL`

func (r *gormRepo) Registrant(ctx context.Context, id uuid.UUID) (*RegistrantInfo, error) {
	var rows []RegistrantInfo
	if err := r.db.WithContext(ctx).Raw(registrantInfoSQL+" AND r.id = ?", id).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return &rows[0], nil
}

func (r *gormRepo) Registrants(ctx context.Context, f RegistrantFilter) ([]RegistrantInfo, error) {
	sql := registrantInfoSQL
	var args []any
	if f.Status != "" {
		sql += " AND r.status = ?"
		args = append(args, f.Status)
	}
	if f.Gender != "" {
		sql += " AND r.gender = ?"
		args = append(args, f.Gender)
	}
	if f.JalurID != nil {
		sql += " AND r.jalur_id = ?"
		args = append(args, *f.JalurID)
	}
	if f.JenjangID != nil {
		sql += " AND r.jenjang_id = ?"
		args = append(args, *f.JenjangID)
	}
	sql += " ORDER BY r.registration_number ASC"

	var rows []RegistrantInfo
	err := r.db.WithContext(ctx).Raw(sql, args...).Scan(&rows).Error
	return rows, err
}

/* ========== log ========== */

func (r *gormRepo) CreateLogs(ctx context.Context, logs []model.DispatchLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(logs, 200).Error
}

func (r *gormRepo) ListLogs(ctx context.Context, f LogFilter, p helper.Params) ([]model.DispatchLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.DispatchLog{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Event != "" {
		q = q.Where("event = ?", f.Event)
	}
	if f.RegistrantID != nil {
		q = q.Where("registrant_id = ?", *f.RegistrantID)
	}
	if s := strings.TrimSpace(f.Q); s != "" {
		like := "%" + s + "%"
		q = q.Where("(recipient_name ILIKE ? OR phone ILIKE ?)", like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.DispatchLog
	err := q.Order("created_at DESC").Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error
	return rows, total, err
}
