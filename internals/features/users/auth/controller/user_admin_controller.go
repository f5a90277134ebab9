package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/features/users/auth/dto"
	"ppdb_backend/internals/features/users/auth/repository"
	helper "ppdb_backend/internals/helpers"
)

// GET /api/a/users
func (ac *AuthController) ListUsers(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	f := repository.ListFilter{
		Role: c.Query("role"),
		Q:    c.Query("q"),
	}
	if v := c.Query("is_active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IsActive = &b
		}
	}
	rows, total, err := ac.Svc.ListUsers(c.UserContext(), f, p)
	if err != nil {
		return authError(c, err)
	}
	return helper.JsonList(c, "Daftar user", dto.FromUsers(rows), helper.BuildMeta(total, p))
}

// POST /api/a/users
func (ac *AuthController) CreateStaff(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := ac.Svc.CreateStaff(c.UserContext(), req)
	if err != nil {
		return authError(c, err)
	}
	return helper.JsonCreated(c, "User berhasil dibuat", dto.FromUser(*u))
}

// PATCH /api/a/users/:id
func (ac *AuthController) UpdateUser(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := ac.Svc.UpdateUser(c.UserContext(), id, req)
	if err != nil {
		return authError(c, err)
	}
	return helper.JsonUpdated(c, "User berhasil diperbarui", dto.FromUser(*u))
}

// POST /api/a/users/:id/reset-password
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := ac.Svc.ResetPassword(c.UserContext(), id, req.NewPassword); err != nil {
		return authError(c, err)
	}
	return helper.JsonUpdated(c, "Password berhasil direset", nil)
}
