package dto

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"ppdb_backend/internals/features/ppdb/registrants/model"
	fileModel "ppdb_backend/internals/features/ppdb/registrant_files/model"
)

const DateLayout = "2006-01-02"

/* =========================
   Requests
========================= */

type UpdateBiodataRequest struct {
	JalurID   *uuid.UUID `json:"jalur_id"`
	JenjangID *uuid.UUID `json:"jenjang_id"`

	FullName       *string `json:"full_name" validate:"omitempty,min=2,max=150"`
	Nickname       *string `json:"nickname" validate:"omitempty,max=60"`
	Gender         *string `json:"gender" validate:"omitempty,oneof=L P"`
	BirthPlace     *string `json:"birth_place" validate:"omitempty,max=100"`
	BirthDate      *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	NIK            *string `json:"nik" validate:"omitempty,numeric,len=16"`
	NISN           *string `json:"nisn" validate:"omitempty,numeric,len=10"`
	Religion       *string `json:"religion" validate:"omitempty,max=30"`
	Address        *string `json:"address" validate:"omitempty,max=1000"`
	Phone          *string `json:"phone" validate:"omitempty,phone_id"`
	PreviousSchool *string `json:"previous_school" validate:"omitempty,max=150"`

	FatherName       *string `json:"father_name" validate:"omitempty,max=150"`
	FatherPhone      *string `json:"father_phone" validate:"omitempty,phone_id"`
	FatherOccupation *string `json:"father_occupation" validate:"omitempty,max=100"`
	MotherName       *string `json:"mother_name" validate:"omitempty,max=150"`
	MotherPhone      *string `json:"mother_phone" validate:"omitempty,phone_id"`
	MotherOccupation *string `json:"mother_occupation" validate:"omitempty,max=100"`
	GuardianName     *string `json:"guardian_name" validate:"omitempty,max=150"`
	GuardianPhone    *string `json:"guardian_phone" validate:"omitempty,phone_id"`

	Extra map[string]any `json:"extra"`
}

// Normalize: trim semua string, gender uppercase.
func (r *UpdateBiodataRequest) Normalize() {
	for _, p := range []*string{
		r.FullName, r.Nickname, r.Gender, r.BirthPlace, r.BirthDate, r.NIK, r.NISN,
		r.Religion, r.Address, r.Phone, r.PreviousSchool,
		r.FatherName, r.FatherPhone, r.FatherOccupation,
		r.MotherName, r.MotherPhone, r.MotherOccupation,
		r.GuardianName, r.GuardianPhone,
	} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	if r.Gender != nil {
		*r.Gender = strings.ToUpper(*r.Gender)
	}
}

// Apply menulis field yang dikirim ke model; false bila tidak ada perubahan sama sekali.
func (r UpdateBiodataRequest) Apply(m *model.Registrant) bool {
	changed := false
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = true
		}
	}
	if r.JalurID != nil {
		m.JalurID = r.JalurID
		changed = true
	}
	if r.JenjangID != nil {
		m.JenjangID = r.JenjangID
		changed = true
	}
	set(&m.FullName, r.FullName)
	set(&m.Nickname, r.Nickname)
	set(&m.Gender, r.Gender)
	set(&m.BirthPlace, r.BirthPlace)
	if r.BirthDate != nil {
		if *r.BirthDate == "" {
			m.BirthDate = nil
		} else if t, err := time.Parse(DateLayout, *r.BirthDate); err == nil {
			m.BirthDate = &t
		}
		changed = true
	}
	set(&m.NIK, r.NIK)
	set(&m.NISN, r.NISN)
	set(&m.Religion, r.Religion)
	set(&m.Address, r.Address)
	set(&m.Phone, r.Phone)
	set(&m.PreviousSchool, r.PreviousSchool)
	set(&m.FatherName, r.FatherName)
	set(&m.FatherPhone, r.FatherPhone)
	set(&m.FatherOccupation, r.FatherOccupation)
	set(&m.MotherName, r.MotherName)
	set(&m.MotherPhone, r.MotherPhone)
	set(&m.MotherOccupation, r.MotherOccupation)
	set(&m.GuardianName, r.GuardianName)
	set(&m.GuardianPhone, r.GuardianPhone)
	if r.Extra != nil {
		if b, err := sonic.Marshal(r.Extra); err == nil {
			m.Extra = datatypes.JSON(b)
			changed = true
		}
	}
	return changed
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft submitted verified accepted rejected"`
	Note   string `json:"note" validate:"max=2000"`
}

/* =========================
   Filters & responses
========================= */

type ListFilter struct {
	Status    string
	JalurID   *uuid.UUID
	JenjangID *uuid.UUID
	Gender    string
	Q         string
}

// Item list admin: registrant + nama jalur/jenjang.
type RegistrantListItem struct {
	model.Registrant
	JalurName   string `json:"jalur_name"`
	JenjangName string `json:"jenjang_name"`
	Email       string `json:"email"`
}

// Detail = biodata + berkas + ringkasan pembayaran (any: disusun modul pembayaran).
type RegistrantDetail struct {
	Registrant  model.Registrant           `json:"registrant"`
	JalurName   string                     `json:"jalur_name"`
	JenjangName string                     `json:"jenjang_name"`
	Files       []fileModel.RegistrantFile `json:"files"`
	Missing     *Completeness              `json:"completeness,omitempty"`
	Payments    any                        `json:"payments,omitempty"`
}

// Completeness: field & dokumen yang belum lengkap.
type Completeness struct {
	Complete         bool     `json:"complete"`
	MissingFields    []string `json:"missing_fields"`
	MissingDocuments []string `json:"missing_documents"`
}

type CountRow struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Total int64  `json:"total"`
}

type PaymentTotals struct {
	AcceptedSum  int64  `json:"accepted_sum"`
	AcceptedCnt  int64  `json:"accepted_count"`
	PendingSum   int64  `json:"pending_sum"`
	PendingCnt   int64  `json:"pending_count"`
	RejectedCnt  int64  `json:"rejected_count"`
	AcceptedText string `json:"accepted_text"`
	PendingText  string `json:"pending_text"`
}

type DashboardStats struct {
	Total     int64         `json:"total"`
	ByStatus  []CountRow    `json:"by_status"`
	ByJalur   []CountRow    `json:"by_jalur"`
	ByJenjang []CountRow    `json:"by_jenjang"`
	ByGender  []CountRow    `json:"by_gender"`
	Payments  PaymentTotals `json:"payments"`
}
