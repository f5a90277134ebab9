package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/*
  payments = pembayaran pendaftar per komponen biaya
  - status: pending | diterima | ditolak
  - method gateway: external_id = order id Midtrans
  - satu biaya hanya boleh punya satu pembayaran yang belum ditolak (uq_payments_open)
*/

type Payment struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RegistrantID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_payments_open,where:status <> 'ditolak' AND deleted_at IS NULL" json:"registrant_id"`
	BiayaID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:uq_payments_open" json:"biaya_id"`
	AmountIDR    int64     `gorm:"column:amount_idr;not null;check:chk_payments_amount,amount_idr > 0" json:"amount_idr"`
	Method       string    `gorm:"size:20;not null" json:"method"`
	Status       string    `gorm:"size:20;not null;default:'pending';index" json:"status"`

	ProofURL       string `gorm:"type:text;not null;default:''" json:"proof_url"`
	ProofObjectKey string `gorm:"type:text;not null;default:''" json:"-"`
	PayerNote      string `gorm:"type:text;not null;default:''" json:"payer_note"`
	AdminNote      string `gorm:"type:text;not null;default:''" json:"admin_note"`

	VerifiedBy *uuid.UUID `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`

	ExternalID       *string `gorm:"size:80;uniqueIndex:uq_payments_external_id,where:external_id IS NOT NULL" json:"external_id,omitempty"`
	CheckoutToken    *string `gorm:"size:120" json:"checkout_token,omitempty"`
	CheckoutURL      *string `gorm:"type:text" json:"checkout_url,omitempty"`
	GatewayReference *string `gorm:"size:120" json:"gateway_reference,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Payment) TableName() string { return "payments" }
