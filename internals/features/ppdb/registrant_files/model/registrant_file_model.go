package model

import (
	"time"

	"github.com/google/uuid"
)

// RegistrantFile = berkas unggahan pendaftar (pas foto, akta, KK, ...).
type RegistrantFile struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RegistrantID uuid.UUID  `gorm:"type:uuid;not null;index:idx_registrant_files_reg_kind" json:"registrant_id"`
	Kind         string     `gorm:"size:30;not null;index:idx_registrant_files_reg_kind" json:"kind"`
	OriginalName string     `gorm:"size:255;not null;default:''" json:"original_name"`
	URL          string     `gorm:"type:text;not null" json:"url"`
	ObjectKey    string     `gorm:"type:text;not null" json:"-"`
	Mime         string     `gorm:"size:100;not null" json:"mime"`
	SizeBytes    int64      `gorm:"not null" json:"size_bytes"`
	Status       string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	Note         string     `gorm:"type:text;not null;default:''" json:"note"`
	VerifiedBy   *uuid.UUID `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RegistrantFile) TableName() string { return "registrant_files" }
