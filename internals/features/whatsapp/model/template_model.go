package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
)

// Audience penerima pesan
const (
	AudienceCalonSiswa = constants.RoleCalonSiswa
	AudiencePanitia    = constants.RolePanitia
	AudienceBendahara  = constants.RoleBendahara
)

var Audiences = []string{AudienceCalonSiswa, AudiencePanitia, AudienceBendahara}

// Template pesan WhatsApp. Gender "" = berlaku untuk semua gender.
type Template struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code      string         `gorm:"size:60;not null;uniqueIndex:uq_wa_templates_key,where:deleted_at IS NULL" json:"code"`
	Audience  string         `gorm:"size:20;not null;uniqueIndex:uq_wa_templates_key,where:deleted_at IS NULL" json:"audience"`
	Gender    string         `gorm:"size:1;not null;default:'';uniqueIndex:uq_wa_templates_key,where:deleted_at IS NULL" json:"gender"`
	Title     string         `gorm:"size:150;not null;default:''" json:"title"`
	Body      string         `gorm:"type:text;not null" json:"body"`
	IsActive  bool           `gorm:"not null" json:"is_active"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Template) TableName() string { return "wa_templates" }
