package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/features/home/site/controller"
)

func SitePublicRoutes(public fiber.Router, db *gorm.DB, schoolName string) {
	ctrl := controller.NewSiteController(db, schoolName)
	public.Get("/site", ctrl.Overview)
}
