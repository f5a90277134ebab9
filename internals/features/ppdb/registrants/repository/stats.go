package repository

import (
	"context"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/registrants/dto"
	helper "ppdb_backend/internals/helpers"
)

func (r *gormRepo) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	db := r.db.WithContext(ctx)
	out := &dto.DashboardStats{}

	var byStatus []dto.CountRow
	if err := db.Raw(`
		SELECT status AS key, COUNT(*) AS total
		FROM registrants
		WHERE deleted_at IS NULL
		GROUP BY status`).Scan(&byStatus).Error; err != nil {
		return nil, err
	}
	// selalu tampilkan semua status, urut sesuai alur
	counts := map[string]int64{}
	for _, row := range byStatus {
		counts[row.Key] = row.Total
		out.Total += row.Total
	}
	for _, s := range constants.RegistrantStatuses {
		out.ByStatus = append(out.ByStatus, dto.CountRow{
			Key:   s,
			Label: constants.RegistrantStatusLabel[s],
			Total: counts[s],
		})
	}

	if err := db.Raw(`
		SELECT COALESCE(j.id::text, '') AS key, COALESCE(j.name, 'Belum memilih') AS label, COUNT(*) AS total
		FROM registrants r
		LEFT JOIN jalur j ON j.id = r.jalur_id
		WHERE r.deleted_at IS NULL
		GROUP BY j.id, j.name
		ORDER BY total DESC`).Scan(&out.ByJalur).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT COALESCE(j.id::text, '') AS key, COALESCE(j.name, 'Belum memilih') AS label, COUNT(*) AS total
		FROM registrants r
		LEFT JOIN jenjang j ON j.id = r.jenjang_id
		WHERE r.deleted_at IS NULL
		GROUP BY j.id, j.name
		ORDER BY total DESC`).Scan(&out.ByJenjang).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(`
		SELECT gender AS key,
		       CASE gender WHEN 'L' THEN 'Laki-laki' WHEN 'P' THEN 'Perempuan' ELSE 'Belum diisi' END AS label,
		       COUNT(*) AS total
		FROM registrants
		WHERE deleted_at IS NULL
		GROUP BY gender
		ORDER BY gender`).Scan(&out.ByGender).Error; err != nil {
		return nil, err
	}

	var pay dto.PaymentTotals
	if err := db.Raw(`
		SELECT
		  COALESCE(SUM(amount_idr) FILTER (WHERE status = ?), 0) AS accepted_sum,
		  COUNT(*) FILTER (WHERE status = ?)                     AS accepted_cnt,
		  COALESCE(SUM(amount_idr) FILTER (WHERE status = ?), 0) AS pending_sum,
		  COUNT(*) FILTER (WHERE status = ?)                     AS pending_cnt,
		  COUNT(*) FILTER (WHERE status = ?)                     AS rejected_cnt
		FROM payments
		WHERE deleted_at IS NULL`,
		constants.ReviewAccepted, constants.ReviewAccepted,
		constants.ReviewPending, constants.ReviewPending,
		constants.ReviewRejected).Scan(&pay).Error; err != nil {
		return nil, err
	}
	pay.AcceptedText = helper.FormatRupiah(pay.AcceptedSum)
	pay.PendingText = helper.FormatRupiah(pay.PendingSum)
	out.Payments = pay

	return out, nil
}
