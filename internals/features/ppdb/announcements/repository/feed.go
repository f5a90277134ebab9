package repository

import (
	"context"

	"gorm.io/gorm"

	"ppdb_backend/internals/features/ppdb/announcements/model"
	helper "ppdb_backend/internals/helpers"
)

// Published: pengumuman terbit untuk target tertentu, terbaru dulu.
func Published(ctx context.Context, db *gorm.DB, targets []string, p helper.Params) ([]model.Announcement, int64, error) {
	q := db.WithContext(ctx).Model(&model.Announcement{}).
		Where("is_published = TRUE AND target IN ?", targets)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.Announcement
	err := q.Order("published_at DESC NULLS LAST").Order("created_at DESC").
		Limit(p.Limit()).Offset(p.Offset()).
		Find(&rows).Error
	return rows, total, err
}
