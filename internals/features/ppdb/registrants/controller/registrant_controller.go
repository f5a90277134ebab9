package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/registrants/dto"
	"ppdb_backend/internals/features/ppdb/registrants/service"
	helper "ppdb_backend/internals/helpers"
)

var validate = helper.NewValidator()

type RegistrantController struct {
	Svc *service.Service
}

func NewRegistrantController(svc *service.Service) *RegistrantController {
	return &RegistrantController{Svc: svc}
}

func registrantError(c *fiber.Ctx, err error) error {
	var inc *service.IncompleteError
	switch {
	case errors.As(err, &inc):
		errs := map[string][]string{}
		for _, f := range inc.Completeness.MissingFields {
			errs[f] = []string{"wajib diisi"}
		}
		for _, d := range inc.Completeness.MissingDocuments {
			errs["documents."+d] = []string{"dokumen wajib belum diunggah"}
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"success":    false,
			"message":    inc.Error(),
			"error_code": "VALIDATION_ERROR",
			"errors":     errs,
			"data":       inc.Completeness,
		})
	case errors.Is(err, service.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Data pendaftar tidak ditemukan")
	case errors.Is(err, service.ErrNotDraft),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrQuotaFull),
		errors.Is(err, service.ErrNoJenjang):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNoChanges),
		errors.Is(err, service.ErrInvalidJalur),
		errors.Is(err, service.ErrInvalidJenjang):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return helper.FromFiberError(c, helper.MapPGError(err))
}

func parseBiodata(c *fiber.Ctx) (*dto.UpdateBiodataRequest, error) {
	var req dto.UpdateBiodataRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return nil, helper.ValidationError(c, err)
	}
	return &req, nil
}

func parseFilter(c *fiber.Ctx) (dto.ListFilter, error) {
	f := dto.ListFilter{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Gender: strings.ToUpper(strings.TrimSpace(c.Query("gender"))),
		Q:      c.Query("q"),
	}
	if f.Status != "" && !constants.Contains(constants.RegistrantStatuses, f.Status) {
		return f, fiber.NewError(fiber.StatusBadRequest, "status tidak valid")
	}
	for key, dst := range map[string]**uuid.UUID{"jalur_id": &f.JalurID, "jenjang_id": &f.JenjangID} {
		v := strings.TrimSpace(c.Query(key))
		if v == "" {
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
		}
		*dst = &id
	}
	return f, nil
}

/* =========================
   Calon siswa (/api/u)
========================= */

// GET /api/u/me/registrant
func (h *RegistrantController) Me(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	r, err := h.Svc.Mine(c.UserContext(), userID)
	if err != nil {
		return registrantError(c, err)
	}
	detail, err := h.Svc.Detail(c.UserContext(), r)
	if err != nil {
		return registrantError(c, err)
	}
	return helper.JsonOK(c, "Data pendaftaran", detail)
}

// PATCH /api/u/me/registrant
func (h *RegistrantController) UpdateMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	req, err := parseBiodata(c)
	if req == nil {
		return err
	}
	r, err := h.Svc.UpdateMine(c.UserContext(), userID, *req)
	if err != nil {
		return registrantError(c, err)
	}
	return helper.JsonUpdated(c, "Biodata berhasil disimpan", r)
}

// POST /api/u/me/registrant/submit
func (h *RegistrantController) SubmitMe(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	r, err := h.Svc.Submit(c.UserContext(), userID)
	if err != nil {
		return registrantError(c, err)
	}
	return helper.JsonUpdated(c, "Pendaftaran berhasil dikirim", r)
}

/* =========================
   Admin (/api/a)
========================= */

// GET /api/a/registrants
func (h *RegistrantController) List(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	rows, total, err := h.Svc.List(c.UserContext(), f, p)
	if err != nil {
		return registrantError(c, err)
	}
	return helper.JsonList(c, "Daftar pendaftar", rows, helper.BuildMeta(total, p))
}

// GET /api/a/registrants/:id
func (h *RegistrantController) Detail(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	r, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return registrantError(c, err)
	}
	detail, err := h.Svc.Detail(c.UserContext(), r)
	if err != nil {
		return registrantError(c, err)
	}
	return helper.JsonOK(c, "Detail pendaftar", detail)
}

// PATCH /api/a/registrants/:id
func (h *RegistrantController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	req, err := parseBiodata(c)
	if req == nil {
		return err
	}
	r, err := h.Svc.AdminUpdate(c.UserContext(), id, *req)
	if err != nil {
		return registrantError(c, err)
	}
	return helper.JsonUpdated(c, "Biodata pendaftar diperbarui", r)
}

// DELETE /api/a/registrants/:id
func (h *RegistrantController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := h.Svc.Delete(c.UserContext(), id); err != nil {
		return registrantError(c, err)
	}
	return helper.JsonDeleted(c, "Pendaftar dihapus", fiber.Map{"id": id})
}

// PATCH /api/a/registrants/:id/status
func (h *RegistrantController) ChangeStatus(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.ChangeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	req.Note = strings.TrimSpace(req.Note)
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	r, err := h.Svc.ChangeStatus(c.UserContext(), id, req.Status, req.Note)
	if err != nil {
		return registrantError(c, err)
	}
	return helper.JsonUpdated(c, "Status pendaftar diperbarui", r)
}

// GET /api/a/dashboard/stats
func (h *RegistrantController) Stats(c *fiber.Ctx) error {
	st, err := h.Svc.Stats(c.UserContext())
	if err != nil {
		return registrantError(c, err)
	}
	return helper.JsonOK(c, "Statistik pendaftaran", st)
}
