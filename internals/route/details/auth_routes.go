package details

import (
	"github.com/gofiber/fiber/v2"

	authController "ppdb_backend/internals/features/users/auth/controller"
	authRoute "ppdb_backend/internals/features/users/auth/route"
)

func AuthRoutes(app *fiber.App, ctrl *authController.AuthController, jwt fiber.Handler) {
	authRoute.AuthRoutes(app, ctrl, jwt)
}

func UserAdminRoutes(admin fiber.Router, ctrl *authController.AuthController) {
	authRoute.UserAdminRoutes(admin, ctrl)
}
