package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ppdb_backend/internals/features/whatsapp/dto"
	"ppdb_backend/internals/features/whatsapp/repository"
	"ppdb_backend/internals/features/whatsapp/service"
	helper "ppdb_backend/internals/helpers"
)

var validate = helper.NewValidator()

type WhatsAppController struct {
	Svc *service.Service
}

func NewWhatsAppController(svc *service.Service) *WhatsAppController {
	return &WhatsAppController{Svc: svc}
}

func waError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrInvalidAudience),
		errors.Is(err, service.ErrMessageRequired),
		errors.Is(err, service.ErrEmptyTemplate):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoRecipients):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	}
	return helper.FromFiberError(c, helper.MapPGError(err))
}

func optUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}

/* =========================
   Template
========================= */

// GET /api/a/whatsapp/templates
func (h *WhatsAppController) ListTemplates(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "code", "asc", helper.DefaultOpts)
	rows, total, err := h.Svc.Repo.ListTemplates(c.UserContext(),
		strings.ToLower(strings.TrimSpace(c.Query("code"))),
		strings.ToLower(strings.TrimSpace(c.Query("audience"))), p)
	if err != nil {
		return waError(c, err)
	}
	return helper.JsonList(c, "Daftar template", rows, helper.BuildMeta(total, p))
}

// GET /api/a/whatsapp/templates/:id
func (h *WhatsAppController) GetTemplate(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	t, err := h.Svc.Repo.FindTemplate(c.UserContext(), id)
	if err != nil {
		return waError(c, err)
	}
	return helper.JsonOK(c, "Detail template", t)
}

// POST /api/a/whatsapp/templates
func (h *WhatsAppController) CreateTemplate(c *fiber.Ctx) error {
	var req dto.CreateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	t := req.ToModel()
	if err := h.Svc.Repo.CreateTemplate(c.UserContext(), &t); err != nil {
		return waError(c, err)
	}
	return helper.JsonCreated(c, "Template berhasil dibuat", t)
}

// PATCH /api/a/whatsapp/templates/:id
func (h *WhatsAppController) UpdateTemplate(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateTemplateRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	t, err := h.Svc.Repo.FindTemplate(c.UserContext(), id)
	if err != nil {
		return waError(c, err)
	}
	req.Apply(t)
	if err := h.Svc.Repo.SaveTemplate(c.UserContext(), t); err != nil {
		return waError(c, err)
	}
	return helper.JsonUpdated(c, "Template berhasil diperbarui", t)
}

// DELETE /api/a/whatsapp/templates/:id
func (h *WhatsAppController) DeleteTemplate(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := h.Svc.Repo.DeleteTemplate(c.UserContext(), id); err != nil {
		return waError(c, err)
	}
	return helper.JsonDeleted(c, "Template berhasil dihapus", fiber.Map{"id": id})
}

/* =========================
   Preview, broadcast, log
========================= */

// POST /api/a/whatsapp/preview
func (h *WhatsAppController) Preview(c *fiber.Ctx) error {
	var req dto.PreviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Audience = strings.ToLower(strings.TrimSpace(req.Audience))
	req.Gender = strings.ToUpper(strings.TrimSpace(req.Gender))
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	out, err := h.Svc.Preview(c.UserContext(), service.PreviewInput{
		TemplateCode: strings.ToLower(strings.TrimSpace(req.TemplateCode)),
		Body:         req.Body,
		Audience:     req.Audience,
		Gender:       req.Gender,
		RegistrantID: optUUID(req.RegistrantID),
		Phone:        req.Phone,
		Vars:         req.Vars,
	})
	if err != nil {
		return waError(c, err)
	}
	return helper.JsonOK(c, "Preview pesan", out)
}

// POST /api/a/whatsapp/broadcast
func (h *WhatsAppController) Broadcast(c *fiber.Ctx) error {
	var req dto.BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Audience = strings.ToLower(strings.TrimSpace(req.Audience))
	req.Filters.Status = strings.ToLower(strings.TrimSpace(req.Filters.Status))
	req.Filters.Gender = strings.ToUpper(strings.TrimSpace(req.Filters.Gender))
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	in := service.BroadcastInput{
		Audience:     req.Audience,
		TemplateCode: strings.ToLower(strings.TrimSpace(req.TemplateCode)),
		Body:         req.Body,
		Filter: repository.RegistrantFilter{
			Status:    req.Filters.Status,
			Gender:    req.Filters.Gender,
			JalurID:   optUUID(req.Filters.JalurID),
			JenjangID: optUUID(req.Filters.JenjangID),
		},
		Vars: req.Vars,
	}
	if uid, err := helper.GetUserIDFromToken(c); err == nil {
		in.CreatedBy = &uid
	}

	out, err := h.Svc.Broadcast(c.UserContext(), in)
	if err != nil {
		return waError(c, err)
	}
	return helper.JsonOK(c, "Broadcast diproses", out)
}

// GET /api/a/whatsapp/logs
func (h *WhatsAppController) Logs(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	f := repository.LogFilter{
		Status:       strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Event:        strings.ToLower(strings.TrimSpace(c.Query("event"))),
		RegistrantID: optUUID(strings.TrimSpace(c.Query("registrant_id"))),
		Q:            c.Query("q"),
	}
	rows, total, err := h.Svc.Repo.ListLogs(c.UserContext(), f, p)
	if err != nil {
		return waError(c, err)
	}
	return helper.JsonList(c, "Log WhatsApp", rows, helper.BuildMeta(total, p))
}
