package route

import (
	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/users/auth/controller"
	rateLimiter "ppdb_backend/internals/middlewares"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

// AuthRoutes: /api/auth (publik + butuh token)
func AuthRoutes(app *fiber.App, ctrl *controller.AuthController, jwt fiber.Handler) {
	baseAuth := app.Group("/api/auth")

	baseAuth.Post("/register", rateLimiter.RegisterRateLimiter(), ctrl.Register)
	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), ctrl.Login)
	baseAuth.Post("/login-google", rateLimiter.LoginRateLimiter(), ctrl.LoginGoogle)

	protected := baseAuth.Group("", jwt)
	protected.Post("/logout", ctrl.Logout)
	protected.Get("/me", ctrl.Me)
	protected.Post("/change-password", ctrl.ChangePassword)
}

// UserAdminRoutes: /api/a/users (admin saja)
func UserAdminRoutes(admin fiber.Router, ctrl *controller.AuthController) {
	users := admin.Group("/users", authMiddleware.OnlyRoles(constants.RoleErrorAdmin("manajemen user"), constants.AdminOnly...))
	users.Get("/", ctrl.ListUsers)
	users.Post("/", ctrl.CreateStaff)
	users.Patch("/:id", ctrl.UpdateUser)
	users.Post("/:id/reset-password", ctrl.ResetPassword)
}
