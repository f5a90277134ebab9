package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	userModel "ppdb_backend/internals/features/users/auth/model"
	"ppdb_backend/internals/features/ppdb/registrants/model"
)

const numberRetries = 5

// RegistrationNumber: <PREFIX>-<tahun>-<urut 5 digit>
func RegistrationNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%05d", strings.ToUpper(prefix), year, seq)
}

func isNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "uq_registrants_number"
	}
	return strings.Contains(err.Error(), "uq_registrants_number")
}

// nextSequence menghitung pendaftar tahun ini (termasuk yang terhapus) + 1.
func (r *gormRepo) nextSequence(tx *gorm.DB, year int) (int, error) {
	var n int64
	like := fmt.Sprintf("%s-%d-%%", strings.ToUpper(r.prefix), year)
	if err := tx.Unscoped().Model(&model.Registrant{}).
		Where("registration_number LIKE ?", like).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n) + 1, nil
}

// CreateUserWithRegistrant membuat user + registrant draft dalam satu transaksi.
func (r *gormRepo) CreateUserWithRegistrant(ctx context.Context, u *userModel.User, jalurID, jenjangID *uuid.UUID) (uuid.UUID, string, error) {
	year := r.now().Year()
	phone := ""
	if u.Phone != nil {
		phone = *u.Phone
	}

	var lastErr error
	for attempt := 0; attempt < numberRetries; attempt++ {
		var reg model.Registrant
		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if u.ID == uuid.Nil {
				if err := tx.Create(u).Error; err != nil {
					return err
				}
			} else if err := tx.Save(u).Error; err != nil {
				return err
			}

			seq, err := r.nextSequence(tx, year)
			if err != nil {
				return err
			}
			reg = model.Registrant{
				UserID:             u.ID,
				RegistrationNumber: RegistrationNumber(r.prefix, year, seq+attempt),
				JalurID:            jalurID,
				JenjangID:          jenjangID,
				Status:             constants.RegistrantDraft,
				FullName:           u.FullName,
				Gender:             u.Gender,
				Phone:              phone,
				Extra:              []byte("{}"),
			}
			return tx.Create(&reg).Error
		})
		if err == nil {
			return reg.ID, reg.RegistrationNumber, nil
		}
		lastErr = err
		if !isNumberConflict(err) {
			return uuid.Nil, "", err
		}
		// user ikut di-rollback, id harus dibuat ulang
		u.ID = uuid.Nil
		zap.L().Warn("nomor pendaftaran bentrok, ulangi", zap.Int("attempt", attempt+1))
	}
	return uuid.Nil, "", lastErr
}
