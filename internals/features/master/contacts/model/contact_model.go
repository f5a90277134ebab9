package model

import (
	"time"

	"github.com/google/uuid"
)

// Contact = nomor WhatsApp panitia/bendahara penerima notifikasi.
type Contact struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	Role      string    `gorm:"size:20;not null;index:idx_contacts_role_gender" json:"role"`
	Gender    string    `gorm:"size:1;not null;default:'';index:idx_contacts_role_gender" json:"gender"`
	Phone     string    `gorm:"size:30;not null" json:"phone"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Contact) TableName() string { return "contacts" }
