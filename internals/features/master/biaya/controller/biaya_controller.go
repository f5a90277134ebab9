package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"ppdb_backend/internals/features/master/biaya/dto"
	"ppdb_backend/internals/features/master/biaya/model"
	helper "ppdb_backend/internals/helpers"
)

var validate = helper.NewValidator()

type BiayaController struct {
	DB *gorm.DB
}

func NewBiayaController(db *gorm.DB) *BiayaController {
	return &BiayaController{DB: db}
}

func (h *BiayaController) find(c *fiber.Ctx) (*model.Biaya, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.Biaya
	if err := h.DB.WithContext(c.UserContext()).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Biaya tidak ditemukan")
		}
		return nil, helper.MapPGError(err)
	}
	return &m, nil
}

// jalur/jenjang yang dirujuk harus ada
func (h *BiayaController) checkRefs(c *fiber.Ctx, jalurID, jenjangID *uuid.UUID) error {
	check := func(table string, id *uuid.UUID, label string) error {
		if id == nil {
			return nil
		}
		var n int64
		if err := h.DB.WithContext(c.UserContext()).
			Table(table).Where("id = ? AND deleted_at IS NULL", *id).Count(&n).Error; err != nil {
			return helper.MapPGError(err)
		}
		if n == 0 {
			return fiber.NewError(fiber.StatusBadRequest, label+" tidak ditemukan")
		}
		return nil
	}
	if err := check("jalur", jalurID, "Jalur"); err != nil {
		return err
	}
	return check("jenjang", jenjangID, "Jenjang")
}

func optUUID(s string) (*uuid.UUID, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, true
	}
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return nil, false
	}
	return &id, true
}

// GET /api/a/biaya
func (h *BiayaController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "sort_order", "asc", helper.DefaultOpts)
	q := h.DB.WithContext(c.UserContext()).Model(&model.Biaya{})

	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("name ILIKE ?", "%"+s+"%")
	}
	if v := c.Query("is_active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			q = q.Where("is_active = ?", b)
		}
	}
	jalurID, ok := optUUID(c.Query("jalur_id"))
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "jalur_id tidak valid")
	}
	jenjangID, ok := optUUID(c.Query("jenjang_id"))
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "jenjang_id tidak valid")
	}
	// filter "berlaku untuk": biaya umum ikut tampil
	if jalurID != nil {
		q = q.Where("(jalur_id IS NULL OR jalur_id = ?)", *jalurID)
	}
	if jenjangID != nil {
		q = q.Where("(jenjang_id IS NULL OR jenjang_id = ?)", *jenjangID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	order, _ := p.SafeOrderClause(map[string]string{
		"sort_order": "sort_order",
		"name":       "name",
		"amount":     "amount_idr",
		"due_date":   "due_date",
		"created_at": "created_at",
	}, "sort_order")

	var rows []model.Biaya
	if err := q.Order(order).Order("name ASC").Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonList(c, "Daftar biaya", rows, helper.BuildMeta(total, p))
}

// GET /api/public/biaya
func (h *BiayaController) ListPublic(c *fiber.Ctx) error {
	q := h.DB.WithContext(c.UserContext()).Where("is_active = TRUE")
	if id, ok := optUUID(c.Query("jalur_id")); ok && id != nil {
		q = q.Where("(jalur_id IS NULL OR jalur_id = ?)", *id)
	}
	if id, ok := optUUID(c.Query("jenjang_id")); ok && id != nil {
		q = q.Where("(jenjang_id IS NULL OR jenjang_id = ?)", *id)
	}
	var rows []model.Biaya
	if err := q.Order("sort_order ASC, name ASC").Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonOK(c, "Daftar biaya", rows)
}

// GET /api/a/biaya/:id
func (h *BiayaController) Get(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Detail biaya", m)
}

// POST /api/a/biaya
func (h *BiayaController) Create(c *fiber.Ctx) error {
	var req dto.CreateBiayaRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	if err := h.checkRefs(c, req.JalurID, req.JenjangID); err != nil {
		return helper.FromFiberError(c, err)
	}

	m := req.ToModel()
	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonCreated(c, "Biaya berhasil dibuat", m)
}

// PATCH /api/a/biaya/:id
func (h *BiayaController) Update(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateBiayaRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	req.Apply(m)
	if err := h.checkRefs(c, m.JalurID, m.JenjangID); err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := h.DB.WithContext(c.UserContext()).Save(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonUpdated(c, "Biaya berhasil diperbarui", m)
}

// DELETE /api/a/biaya/:id
func (h *BiayaController) Delete(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var used int64
	if err := h.DB.WithContext(c.UserContext()).
		Table("payments").Where("biaya_id = ? AND deleted_at IS NULL", m.ID).
		Count(&used).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	if used > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Biaya sudah memiliki pembayaran")
	}

	if err := h.DB.WithContext(c.UserContext()).Delete(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonDeleted(c, "Biaya berhasil dihapus", fiber.Map{"id": m.ID})
}
