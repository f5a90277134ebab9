package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/master/jenjang/controller"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

func JenjangAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewJenjangController(db)

	g := admin.Group("/jenjang")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)

	w := g.Group("", authMiddleware.OnlyRoles(constants.RoleErrorAdmin("jenjang"), constants.AdminOnly...))
	w.Post("/", ctrl.Create)
	w.Patch("/:id", ctrl.Update)
	w.Delete("/:id", ctrl.Delete)
}

func JenjangPublicRoutes(public fiber.Router, db *gorm.DB) {
	ctrl := controller.NewJenjangController(db)
	public.Get("/jenjang", ctrl.ListPublic)
}
