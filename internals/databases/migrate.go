package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	biayaModel "ppdb_backend/internals/features/master/biaya/model"
	contactModel "ppdb_backend/internals/features/master/contacts/model"
	jalurModel "ppdb_backend/internals/features/master/jalur/model"
	jenjangModel "ppdb_backend/internals/features/master/jenjang/model"
	settingModel "ppdb_backend/internals/features/master/site_settings/model"
	announcementModel "ppdb_backend/internals/features/ppdb/announcements/model"
	paymentModel "ppdb_backend/internals/features/ppdb/payments/model"
	fileModel "ppdb_backend/internals/features/ppdb/registrant_files/model"
	registrantModel "ppdb_backend/internals/features/ppdb/registrants/model"
	authModel "ppdb_backend/internals/features/users/auth/model"
	waModel "ppdb_backend/internals/features/whatsapp/model"
)

// Models: urutan mengikuti dependensi (users dulu, lalu master, lalu PPDB).
func Models() []any {
	return []any{
		&authModel.User{},
		&authModel.TokenBlacklist{},

		&jalurModel.Jalur{},
		&jenjangModel.Jenjang{},
		&biayaModel.Biaya{},
		&contactModel.Contact{},
		&settingModel.SiteSetting{},

		&registrantModel.Registrant{},
		&fileModel.RegistrantFile{},
		&paymentModel.Payment{},
		&paymentModel.PaymentGatewayEvent{},
		&announcementModel.Announcement{},

		&waModel.Template{},
		&waModel.DispatchLog{},
	}
}

// AutoMigrate membuat/menyesuaikan tabel. gen_random_uuid() butuh pgcrypto di PG < 13.
func AutoMigrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		zap.L().Warn("pgcrypto tidak bisa dipasang, lanjut", zap.Error(err))
	}
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("migrate %T: %w", m, err)
		}
	}
	zap.L().Info("✅ migrasi selesai", zap.Int("tables", len(Models())))
	return nil
}
