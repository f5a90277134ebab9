package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
)

// Jenjang pendidikan beserta kuota dan dokumen wajib.
type Jenjang struct {
	ID                uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string         `gorm:"size:120;not null" json:"name"`
	Slug              string         `gorm:"size:140;not null;uniqueIndex:uq_jenjang_slug,where:deleted_at IS NULL" json:"slug"`
	Description       string         `gorm:"type:text;not null;default:''" json:"description"`
	Quota             int            `gorm:"not null;default:0;check:chk_jenjang_quota,quota >= 0" json:"quota"`
	RequiredDocuments pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"required_documents"`
	IsActive          bool           `gorm:"not null;index" json:"is_active"`
	SortOrder         int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt         time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Jenjang) TableName() string { return "jenjang" }

// Documents mengembalikan dokumen wajib; kosong = default.
func (j Jenjang) Documents() []string {
	if len(j.RequiredDocuments) == 0 {
		return append([]string(nil), constants.DefaultRequiredDocuments...)
	}
	return []string(j.RequiredDocuments)
}
