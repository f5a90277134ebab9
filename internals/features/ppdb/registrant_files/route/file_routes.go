package route

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/registrant_files/controller"
	rateLimiter "ppdb_backend/internals/middlewares"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

func FileUserRoutes(user fiber.Router, ctrl *controller.FileController) {
	g := user.Group("/me/files")
	g.Get("/", ctrl.Mine)
	g.Post("/", rateLimiter.UploadRateLimiter(), ctrl.Upload)
	g.Delete("/:id", ctrl.DeleteMine)
}

func FileAdminRoutes(admin fiber.Router, ctrl *controller.FileController) {
	admin.Patch("/files/:id/verify",
		authMiddleware.OnlyRoles(constants.RoleErrorCommittee("verifikasi berkas"), constants.CommitteeAndAbove...),
		ctrl.Review)
}
