package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Biaya = komponen tagihan. JalurID/JenjangID nil berarti berlaku untuk semua.
type Biaya struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string         `gorm:"size:160;not null" json:"name"`
	AmountIDR   int64          `gorm:"column:amount_idr;not null;check:chk_biaya_amount,amount_idr > 0" json:"amount_idr"`
	Description string         `gorm:"type:text;not null;default:''" json:"description"`
	JalurID     *uuid.UUID     `gorm:"type:uuid;index" json:"jalur_id"`
	JenjangID   *uuid.UUID     `gorm:"type:uuid;index" json:"jenjang_id"`
	IsMandatory bool           `gorm:"not null" json:"is_mandatory"`
	DueDate     *time.Time     `gorm:"type:date" json:"due_date"`
	IsActive    bool           `gorm:"not null;index" json:"is_active"`
	SortOrder   int            `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Biaya) TableName() string { return "biaya" }

// AppliesTo: cocok untuk jalur/jenjang tertentu (nil di sisi biaya = semua).
func (b Biaya) AppliesTo(jalurID, jenjangID *uuid.UUID) bool {
	if !b.IsActive {
		return false
	}
	if b.JalurID != nil && (jalurID == nil || *b.JalurID != *jalurID) {
		return false
	}
	if b.JenjangID != nil && (jenjangID == nil || *b.JenjangID != *jenjangID) {
		return false
	}
	return true
}
