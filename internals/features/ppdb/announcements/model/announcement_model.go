package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
)

type Announcement struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title            string         `gorm:"size:200;not null" json:"title"`
	Slug             string         `gorm:"size:220;not null;uniqueIndex:uq_announcements_slug,where:deleted_at IS NULL" json:"slug"`
	Content          string         `gorm:"type:text;not null;default:''" json:"content"`
	Target           string         `gorm:"size:20;not null;default:'all';index:idx_announcements_feed,priority:1" json:"target"`
	IsPublished      bool           `gorm:"not null;default:false;index:idx_announcements_feed,priority:2" json:"is_published"`
	PublishedAt      *time.Time     `gorm:"index:idx_announcements_feed,priority:3,sort:desc" json:"published_at"`
	AttachmentURL    string         `gorm:"type:text;not null;default:''" json:"attachment_url"`
	AttachmentObject string         `gorm:"type:text;not null;default:''" json:"-"`
	CreatedBy        *uuid.UUID     `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Announcement) TableName() string { return "announcements" }

// VisibleTargets: target pengumuman yang boleh dilihat role tertentu.
func VisibleTargets(role string) []string {
	switch role {
	case constants.RoleAdmin:
		return constants.AnnouncementTargets
	case constants.RolePanitia:
		return []string{constants.TargetPanitia, constants.TargetAll}
	case constants.RoleCalonSiswa:
		return []string{constants.TargetCalonSiswa, constants.TargetAll}
	default:
		return []string{constants.TargetAll}
	}
}

// SetPublished mengisi published_at saat pertama kali terbit; unpublish mengosongkannya.
func (a *Announcement) SetPublished(on bool, now time.Time) {
	a.IsPublished = on
	if !on {
		a.PublishedAt = nil
		return
	}
	if a.PublishedAt == nil {
		a.PublishedAt = &now
	}
}
