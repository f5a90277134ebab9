package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	biayaRoute "ppdb_backend/internals/features/master/biaya/route"
	contactRoute "ppdb_backend/internals/features/master/contacts/route"
	jalurRoute "ppdb_backend/internals/features/master/jalur/route"
	jenjangRoute "ppdb_backend/internals/features/master/jenjang/route"
	settingRoute "ppdb_backend/internals/features/master/site_settings/route"
)

// ✅ Publik: /api/public/jalur, /api/public/jenjang, /api/public/biaya
func MasterPublicRoutes(public fiber.Router, db *gorm.DB) {
	jalurRoute.JalurPublicRoutes(public, db)
	jenjangRoute.JenjangPublicRoutes(public, db)
	biayaRoute.BiayaPublicRoutes(public, db)
}

// ✅ Admin: /api/a/jalur, /api/a/contacts, /api/a/site-settings, ...
func MasterAdminRoutes(admin fiber.Router, db *gorm.DB) {
	jalurRoute.JalurAdminRoutes(admin, db)
	jenjangRoute.JenjangAdminRoutes(admin, db)
	biayaRoute.BiayaAdminRoutes(admin, db)
	contactRoute.ContactAdminRoutes(admin, db)
	settingRoute.SiteSettingAdminRoutes(admin, db)
}
