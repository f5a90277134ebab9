package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Jalur pendaftaran (reguler, prestasi, beasiswa, ...)
type Jalur struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string         `gorm:"size:120;not null" json:"name"`
	Slug          string         `gorm:"size:140;not null;uniqueIndex:uq_jalur_slug,where:deleted_at IS NULL" json:"slug"`
	Description   string         `gorm:"type:text;not null;default:''" json:"description"`
	IsScholarship bool           `gorm:"not null;default:false" json:"is_scholarship"`
	IsActive      bool           `gorm:"not null;index" json:"is_active"`
	SortOrder     int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Jalur) TableName() string { return "jalur" }
