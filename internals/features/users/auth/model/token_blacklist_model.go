package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// TokenBlacklist menyimpan hash SHA-256 token yang sudah logout, bukan token mentah.
// Baris dihapus permanen oleh scheduler setelah lewat masa berlaku + TTL.
type TokenBlacklist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TokenHash string    `gorm:"size:64;not null;uniqueIndex:uq_token_blacklist_hash" json:"-"`
	ExpiredAt time.Time `gorm:"not null;index" json:"expired_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (TokenBlacklist) TableName() string { return "token_blacklist" }

func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
