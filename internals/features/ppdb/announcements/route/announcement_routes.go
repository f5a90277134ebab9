package route

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/announcements/controller"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

// /api/a
func AnnouncementAdminRoutes(admin fiber.Router, ctrl *controller.AnnouncementController) {
	admin.Get("/announcements/feed", ctrl.Feed)

	g := admin.Group("/announcements",
		authMiddleware.OnlyRoles(constants.RoleErrorCommittee("pengumuman"), constants.CommitteeAndAbove...))
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
	g.Post("/", ctrl.Create)
	g.Patch("/:id", ctrl.Update)
	g.Patch("/:id/publish", ctrl.Publish)
	g.Post("/:id/attachment", ctrl.UploadAttachment)
	g.Delete("/:id", ctrl.Delete)
}

// /api/u
func AnnouncementUserRoutes(user fiber.Router, ctrl *controller.AnnouncementController) {
	user.Get("/announcements", ctrl.Feed)
}

// /api/public
func AnnouncementPublicRoutes(public fiber.Router, ctrl *controller.AnnouncementController) {
	public.Get("/announcements", ctrl.Public)
	public.Get("/announcements/:slug", ctrl.PublicDetail)
}
