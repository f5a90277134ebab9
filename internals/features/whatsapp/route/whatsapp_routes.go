package route

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/whatsapp/controller"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

// /api/a/whatsapp (admin + panitia)
func WhatsAppAdminRoutes(admin fiber.Router, ctrl *controller.WhatsAppController) {
	g := admin.Group("/whatsapp",
		authMiddleware.OnlyRoles(constants.RoleErrorCommittee("WhatsApp"), constants.CommitteeAndAbove...))

	t := g.Group("/templates")
	t.Get("/", ctrl.ListTemplates)
	t.Get("/:id", ctrl.GetTemplate)
	t.Post("/", ctrl.CreateTemplate)
	t.Patch("/:id", ctrl.UpdateTemplate)
	t.Delete("/:id", ctrl.DeleteTemplate)

	g.Post("/preview", ctrl.Preview)
	g.Post("/broadcast", ctrl.Broadcast)
	g.Get("/logs", ctrl.Logs)
}
