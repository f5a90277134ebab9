package model

import (
	"time"

	"github.com/google/uuid"
)

// Status pengiriman. link = tanpa gateway (hanya tautan wa.me),
// skipped = nomor tidak valid atau template kosong.
const (
	StatusLink    = "link"
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

type DispatchLog struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Event         string     `gorm:"size:40;not null;default:'';index" json:"event"`
	TemplateCode  string     `gorm:"size:60;not null;default:''" json:"template_code"`
	Audience      string     `gorm:"size:20;not null;default:''" json:"audience"`
	RecipientName string     `gorm:"size:150;not null;default:''" json:"recipient_name"`
	Phone         string     `gorm:"size:30;not null;default:''" json:"phone"`
	Message       string     `gorm:"type:text;not null;default:''" json:"message"`
	URL           string     `gorm:"type:text;not null;default:''" json:"url"`
	Status        string     `gorm:"size:10;not null;index" json:"status"`
	Error         string     `gorm:"type:text;not null;default:''" json:"error,omitempty"`
	RegistrantID  *uuid.UUID `gorm:"type:uuid;index" json:"registrant_id,omitempty"`
	CreatedBy     *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (DispatchLog) TableName() string { return "wa_dispatch_logs" }
