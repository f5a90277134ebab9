package route

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/payments/controller"
	rateLimiter "ppdb_backend/internals/middlewares"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

// /api/u (calon siswa)
func PaymentUserRoutes(user fiber.Router, ctrl *controller.PaymentController) {
	g := user.Group("/me/payments")
	g.Get("/", ctrl.Mine)
	g.Post("/", rateLimiter.UploadRateLimiter(), ctrl.Submit)
	g.Post("/checkout", ctrl.Checkout)
}

// /api/public (webhook gateway, tanpa JWT)
func PaymentPublicRoutes(public fiber.Router, ctrl *controller.PaymentController) {
	public.Post("/payments/midtrans/notification", ctrl.MidtransNotification)
}

// /api/a (admin + bendahara)
func PaymentAdminRoutes(admin fiber.Router, ctrl *controller.PaymentController) {
	guard := authMiddleware.OnlyRoles(constants.RoleErrorTreasurer("pembayaran"), constants.TreasurerAndAbove...)

	g := admin.Group("/payments", guard)
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
	g.Patch("/:id/verify", ctrl.Verify)

	admin.Get("/registrants/:id/payments",
		authMiddleware.OnlyRoles(constants.RoleErrorCommittee("pembayaran pendaftar"), constants.StaffRoles...),
		ctrl.ForRegistrant)
}
