package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/master/site_settings/controller"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

func SiteSettingAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewSiteSettingController(db)

	g := admin.Group("/site-settings")
	g.Get("/", ctrl.List)

	w := g.Group("", authMiddleware.OnlyRoles(constants.RoleErrorAdmin("pengaturan situs"), constants.AdminOnly...))
	w.Put("/", ctrl.Upsert)
	w.Delete("/:key", ctrl.Delete)
}
