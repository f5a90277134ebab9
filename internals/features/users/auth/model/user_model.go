package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User merepresentasikan tabel users (akun calon siswa & staf).
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserName    string         `gorm:"size:50;not null;uniqueIndex:uq_users_user_name,where:deleted_at IS NULL" json:"user_name"`
	FullName    string         `gorm:"size:150;not null;default:''" json:"full_name"`
	Email       string         `gorm:"size:255;not null;uniqueIndex:uq_users_email,where:deleted_at IS NULL" json:"email"`
	Phone       *string        `gorm:"size:20" json:"phone,omitempty"`
	Password    string         `gorm:"not null" json:"-"`
	GoogleID    *string        `gorm:"size:255;uniqueIndex:uq_users_google_id,where:google_id IS NOT NULL" json:"-"`
	Role        string         `gorm:"type:varchar(20);not null;default:'calon_siswa';index" json:"role"`
	Gender      string         `gorm:"type:varchar(1);not null;default:''" json:"gender"`
	IsActive    bool           `gorm:"not null" json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}
