package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/master/contacts/controller"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

func ContactAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewContactController(db)

	g := admin.Group("/contacts", authMiddleware.OnlyRoles(constants.RoleErrorAdmin("kontak"), constants.AdminOnly...))
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Delete("/:id", ctrl.Delete)
}
