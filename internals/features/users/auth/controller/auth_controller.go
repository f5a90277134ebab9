package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/features/users/auth/dto"
	"ppdb_backend/internals/features/users/auth/repository"
	"ppdb_backend/internals/features/users/auth/service"
	helper "ppdb_backend/internals/helpers"
)

var validate = helper.NewValidator()

type AuthController struct {
	Svc *service.Service
}

func NewAuthController(svc *service.Service) *AuthController {
	return &AuthController{Svc: svc}
}

func authError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUsernameTaken):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidGoogleToken):
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrInactive):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrWeakPassword):
		return helper.JsonValidationError(c, map[string][]string{"password": {err.Error()}})
	case errors.Is(err, service.ErrWrongPassword), errors.Is(err, service.ErrNoChanges):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrGoogleDisabled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	}
	return helper.FromFiberError(c, helper.MapPGError(err))
}

func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return helper.ValidationError(c, err)
	}
	return nil
}

// POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := ac.Svc.Register(c.UserContext(), req)
	if err != nil {
		return authError(c, err)
	}
	setTokenCookie(c, resp)
	return helper.JsonCreated(c, "Pendaftaran akun berhasil", resp)
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := ac.Svc.Login(c.UserContext(), req)
	if err != nil {
		return authError(c, err)
	}
	setTokenCookie(c, resp)
	return helper.JsonOK(c, "Login berhasil", resp)
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req dto.GoogleLoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	resp, err := ac.Svc.LoginGoogle(c.UserContext(), req.IDToken)
	if err != nil {
		return authError(c, err)
	}
	setTokenCookie(c, resp)
	return helper.JsonOK(c, "Login Google berhasil", resp)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	raw := helper.AccessToken(c)
	if raw == "" {
		return helper.JsonError(c, fiber.StatusUnauthorized, "Token tidak ditemukan")
	}
	if err := ac.Svc.Logout(c.UserContext(), raw); err != nil {
		return authError(c, err)
	}
	c.ClearCookie(helper.CookieAccess)
	return helper.JsonOK(c, "Logout berhasil", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	u, err := ac.Svc.Me(c.UserContext(), userID)
	if err != nil {
		return authError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromUser(*u))
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := ac.Svc.ChangePassword(c.UserContext(), userID, req); err != nil {
		return authError(c, err)
	}
	return helper.JsonUpdated(c, "Password berhasil diperbarui", nil)
}

func setTokenCookie(c *fiber.Ctx, resp *dto.TokenResponse) {
	c.Cookie(&fiber.Cookie{
		Name:     helper.CookieAccess,
		Value:    resp.AccessToken,
		Expires:  resp.ExpiresAt,
		HTTPOnly: true,
		Secure:   strings.HasPrefix(c.Protocol(), "https"),
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
}
