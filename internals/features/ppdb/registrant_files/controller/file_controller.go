package controller

import (
	"errors"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ppdb_backend/internals/features/ppdb/registrant_files/service"
	regService "ppdb_backend/internals/features/ppdb/registrants/service"
	helper "ppdb_backend/internals/helpers"
	"ppdb_backend/internals/helpers/storage"
)

var validate = helper.NewValidator()

type FileController struct {
	Svc *service.Service
}

func NewFileController(svc *service.Service) *FileController {
	return &FileController{Svc: svc}
}

type reviewRequest struct {
	Status string `json:"status" validate:"required,oneof=diterima ditolak"`
	Note   string `json:"note" validate:"required_if=Status ditolak,max=1000"`
}

func fileError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound), errors.Is(err, regService.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		return helper.JsonError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrNotDraft):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrTooLarge):
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrInvalidKind),
		errors.Is(err, service.ErrFileType),
		errors.Is(err, service.ErrEmptyFile),
		errors.Is(err, storage.ErrUnsupportedImage):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return helper.FromFiberError(c, helper.MapPGError(err))
}

// ReadFormFile membaca field multipart dengan batas ukuran (maxBytes+1 untuk deteksi kelebihan).
func ReadFormFile(c *fiber.Ctx, field string, maxBytes int64) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Field '"+field+"' wajib diisi")
	}
	if fh.Size > maxBytes {
		return "", nil, service.ErrTooLarge
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Gagal membuka berkas")
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return "", nil, fiber.NewError(fiber.StatusBadRequest, "Gagal membaca berkas")
	}
	if int64(len(data)) > maxBytes {
		return "", nil, service.ErrTooLarge
	}
	return fh.Filename, data, nil
}

// GET /api/u/me/files
func (h *FileController) Mine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	rows, err := h.Svc.Mine(c.UserContext(), userID)
	if err != nil {
		return fileError(c, err)
	}
	return helper.JsonOK(c, "Daftar berkas", rows)
}

// POST /api/u/me/files (multipart: kind, file)
func (h *FileController) Upload(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	kind := strings.ToLower(strings.TrimSpace(c.FormValue("kind")))
	if kind == "" {
		return helper.JsonValidationError(c, map[string][]string{"kind": {"wajib diisi"}})
	}
	name, data, err := ReadFormFile(c, "file", h.Svc.MaxBytes)
	if err != nil {
		return fileError(c, err)
	}

	f, err := h.Svc.Upload(c.UserContext(), userID, kind, name, data)
	if err != nil {
		return fileError(c, err)
	}
	return helper.JsonCreated(c, "Berkas berhasil diunggah", f)
}

// DELETE /api/u/me/files/:id
func (h *FileController) DeleteMine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := h.Svc.DeleteMine(c.UserContext(), userID, id); err != nil {
		return fileError(c, err)
	}
	return helper.JsonDeleted(c, "Berkas dihapus", fiber.Map{"id": id})
}

// PATCH /api/a/files/:id/verify
func (h *FileController) Review(c *fiber.Ctx) error {
	adminID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req reviewRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	req.Note = strings.TrimSpace(req.Note)
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	f, err := h.Svc.Review(c.UserContext(), id, req.Status, req.Note, adminID)
	if err != nil {
		return fileError(c, err)
	}
	return helper.JsonUpdated(c, "Status berkas diperbarui", f)
}
