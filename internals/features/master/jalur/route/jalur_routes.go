package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/master/jalur/controller"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

func JalurAdminRoutes(admin fiber.Router, db *gorm.DB) {
	ctrl := controller.NewJalurController(db)

	g := admin.Group("/jalur")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)

	w := g.Group("", authMiddleware.OnlyRoles(constants.RoleErrorAdmin("jalur"), constants.AdminOnly...))
	w.Post("/", ctrl.Create)
	w.Patch("/:id", ctrl.Update)
	w.Delete("/:id", ctrl.Delete)
}

func JalurPublicRoutes(public fiber.Router, db *gorm.DB) {
	ctrl := controller.NewJalurController(db)
	public.Get("/jalur", func(c *fiber.Ctx) error {
		c.Locals("public_only", true)
		return c.Next()
	}, ctrl.List)
}
