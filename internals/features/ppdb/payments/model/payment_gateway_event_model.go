package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ProviderMidtrans = "midtrans"

	EventReceived  = "received"
	EventProcessed = "processed"
	EventIgnored   = "ignored"
	EventFailed    = "failed"
)

// PaymentGatewayEvent = log notifikasi gateway (bisa banyak per payment).
type PaymentGatewayEvent struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PaymentID   *uuid.UUID     `gorm:"type:uuid;index" json:"payment_id"`
	Provider    string         `gorm:"size:30;not null" json:"provider"`
	EventType   string         `gorm:"size:40;not null;default:''" json:"event_type"`
	OrderID     string         `gorm:"size:80;not null;default:'';index" json:"order_id"`
	ExternalRef string         `gorm:"size:120;not null;default:''" json:"external_ref"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`
	Status      string         `gorm:"size:20;not null;default:'received'" json:"status"`
	Error       string         `gorm:"type:text;not null;default:''" json:"error"`
	ReceivedAt  time.Time      `gorm:"not null;default:now()" json:"received_at"`
	ProcessedAt *time.Time     `json:"processed_at"`
}

func (PaymentGatewayEvent) TableName() string { return "payment_gateway_events" }
