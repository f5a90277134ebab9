package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/master/jenjang/dto"
	"ppdb_backend/internals/features/master/jenjang/model"
)

// AcceptedCounts: jumlah pendaftar diterima per jenjang.
func AcceptedCounts(ctx context.Context, db *gorm.DB) (map[uuid.UUID]int64, error) {
	type row struct {
		JenjangID uuid.UUID
		Total     int64
	}
	var rows []row
	err := db.WithContext(ctx).Raw(`
		SELECT jenjang_id, COUNT(*) AS total
		FROM registrants
		WHERE status = ? AND jenjang_id IS NOT NULL AND deleted_at IS NULL
		GROUP BY jenjang_id`, constants.RegistrantAccepted).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, r := range rows {
		out[r.JenjangID] = r.Total
	}
	return out, nil
}

// ListAvailability: jenjang aktif + accepted/remaining.
func ListAvailability(ctx context.Context, db *gorm.DB) ([]dto.JenjangAvailability, error) {
	var rows []model.Jenjang
	if err := db.WithContext(ctx).
		Where("is_active = TRUE").
		Order("sort_order ASC, name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	counts, err := AcceptedCounts(ctx, db)
	if err != nil {
		return nil, err
	}
	out := make([]dto.JenjangAvailability, 0, len(rows))
	for _, j := range rows {
		out = append(out, dto.NewAvailability(j, counts[j.ID]))
	}
	return out, nil
}
