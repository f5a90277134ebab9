package details

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	siteRoute "ppdb_backend/internals/features/home/site/route"
)

// ✅ Landing page publik
// Contoh akses: /api/public/site
func HomePublicRoutes(public fiber.Router, db *gorm.DB, schoolName string) {
	siteRoute.SitePublicRoutes(public, db, schoolName)
}
