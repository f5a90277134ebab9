package route

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/registrants/controller"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

// /api/u (calon siswa)
func RegistrantUserRoutes(user fiber.Router, ctrl *controller.RegistrantController) {
	g := user.Group("/me/registrant")
	g.Get("/", ctrl.Me)
	g.Patch("/", ctrl.UpdateMe)
	g.Post("/submit", ctrl.SubmitMe)
}

// /api/a (admin + panitia)
func RegistrantAdminRoutes(admin fiber.Router, ctrl *controller.RegistrantController) {
	guard := authMiddleware.OnlyRoles(constants.RoleErrorCommittee("data pendaftar"), constants.CommitteeAndAbove...)

	g := admin.Group("/registrants", guard)
	g.Get("/", ctrl.List)
	g.Get("/export", ctrl.Export)
	g.Get("/:id", ctrl.Detail)
	g.Patch("/:id", ctrl.Update)
	g.Patch("/:id/status", ctrl.ChangeStatus)
	g.Delete("/:id", authMiddleware.OnlyRoles(constants.RoleErrorAdmin("hapus pendaftar"), constants.AdminOnly...), ctrl.Delete)

	admin.Get("/dashboard/stats", ctrl.Stats)
}
