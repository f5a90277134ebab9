package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/master/biaya/controller"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

// biaya boleh dikelola admin & bendahara
func BiayaAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewBiayaController(db)

	g := admin.Group("/biaya")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)

	w := g.Group("", authMiddleware.OnlyRoles(constants.RoleErrorTreasurer("biaya"), constants.TreasurerAndAbove...))
	w.Post("/", ctrl.Create)
	w.Patch("/:id", ctrl.Update)
	w.Delete("/:id", ctrl.Delete)
}

func BiayaPublicRoutes(public fiber.Router, db *gorm.DB) {
	ctrl := controller.NewBiayaController(db)
	public.Get("/biaya", ctrl.ListPublic)
}
