package details

import (
	"github.com/gofiber/fiber/v2"

	announcementController "ppdb_backend/internals/features/ppdb/announcements/controller"
	announcementRoute "ppdb_backend/internals/features/ppdb/announcements/route"
	paymentController "ppdb_backend/internals/features/ppdb/payments/controller"
	paymentRoute "ppdb_backend/internals/features/ppdb/payments/route"
	fileController "ppdb_backend/internals/features/ppdb/registrant_files/controller"
	fileRoute "ppdb_backend/internals/features/ppdb/registrant_files/route"
	registrantController "ppdb_backend/internals/features/ppdb/registrants/controller"
	registrantRoute "ppdb_backend/internals/features/ppdb/registrants/route"
)

type PPDBControllers struct {
	Registrants   *registrantController.RegistrantController
	Files         *fileController.FileController
	Payments      *paymentController.PaymentController
	Announcements *announcementController.AnnouncementController
}

// ✅ Publik: webhook Midtrans + pengumuman
func PPDBPublicRoutes(public fiber.Router, c PPDBControllers) {
	paymentRoute.PaymentPublicRoutes(public, c.Payments)
	announcementRoute.AnnouncementPublicRoutes(public, c.Announcements)
}

// ✅ Calon siswa: /api/u/me/...
func PPDBUserRoutes(user fiber.Router, c PPDBControllers) {
	registrantRoute.RegistrantUserRoutes(user, c.Registrants)
	fileRoute.FileUserRoutes(user, c.Files)
	paymentRoute.PaymentUserRoutes(user, c.Payments)
	announcementRoute.AnnouncementUserRoutes(user, c.Announcements)
}

// ✅ Staf: /api/a/...
// Payment dipasang lebih dulu: /registrants/:id/payments harus terbuka untuk bendahara
// sebelum guard grup /registrants (panitia ke atas) ikut terpasang.
func PPDBAdminRoutes(admin fiber.Router, c PPDBControllers) {
	paymentRoute.PaymentAdminRoutes(admin, c.Payments)
	registrantRoute.RegistrantAdminRoutes(admin, c.Registrants)
	fileRoute.FileAdminRoutes(admin, c.Files)
	announcementRoute.AnnouncementAdminRoutes(admin, c.Announcements)
}
