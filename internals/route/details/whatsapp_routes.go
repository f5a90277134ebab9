package details

import (
	"github.com/gofiber/fiber/v2"

	waController "ppdb_backend/internals/features/whatsapp/controller"
	waRoute "ppdb_backend/internals/features/whatsapp/route"
)

// Contoh akses: /api/a/whatsapp/templates
func WhatsAppAdminRoutes(admin fiber.Router, ctrl *waController.WhatsAppController) {
	waRoute.WhatsAppAdminRoutes(admin, ctrl)
}
