package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/features/master/jalur/dto"
	"ppdb_backend/internals/features/master/jalur/model"
	helper "ppdb_backend/internals/helpers"
)

var validate = helper.NewValidator()

type JalurController struct {
	DB *gorm.DB
}

func NewJalurController(db *gorm.DB) *JalurController {
	return &JalurController{DB: db}
}

func (h *JalurController) find(c *fiber.Ctx) (*model.Jalur, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.Jalur
	if err := h.DB.WithContext(c.UserContext()).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Jalur tidak ditemukan")
		}
		return nil, helper.MapPGError(err)
	}
	return &m, nil
}

// GET /api/a/jalur  &  GET /api/public/jalur (aktif saja)
func (h *JalurController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "sort_order", "asc", helper.DefaultOpts)
	q := h.DB.WithContext(c.UserContext()).Model(&model.Jalur{})

	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("name ILIKE ?", "%"+s+"%")
	}
	if v := c.Query("is_active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			q = q.Where("is_active = ?", b)
		}
	}
	if c.Locals("public_only") == true {
		q = q.Where("is_active = TRUE")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	order, _ := p.SafeOrderClause(map[string]string{
		"sort_order": "sort_order",
		"name":       "name",
		"created_at": "created_at",
	}, "sort_order")

	var rows []model.Jalur
	if err := q.Order(order).Order("name ASC").Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonList(c, "Daftar jalur", rows, helper.BuildMeta(total, p))
}

// GET /api/a/jalur/:id
func (h *JalurController) Get(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Detail jalur", m)
}

// POST /api/a/jalur
func (h *JalurController) Create(c *fiber.Ctx) error {
	var req dto.CreateJalurRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	m := req.ToModel()
	base := req.Slug
	if strings.TrimSpace(base) == "" {
		base = req.Name
	}
	slug, err := helper.EnsureUniqueSlugCI(c.UserContext(), h.DB, "jalur", "slug", helper.Slugify(base, 120), "", 140)
	if err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	m.Slug = slug

	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonCreated(c, "Jalur berhasil dibuat", m)
}

// PATCH /api/a/jalur/:id
func (h *JalurController) Update(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateJalurRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	req.Apply(m)

	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slug, err := helper.EnsureUniqueSlugCI(c.UserContext(), h.DB, "jalur", "slug", helper.Slugify(*req.Slug, 120), m.ID.String(), 140)
		if err != nil {
			return helper.FromFiberError(c, helper.MapPGError(err))
		}
		m.Slug = slug
	}

	if err := h.DB.WithContext(c.UserContext()).Save(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonUpdated(c, "Jalur berhasil diperbarui", m)
}

// DELETE /api/a/jalur/:id (soft delete; 409 bila masih dipakai)
func (h *JalurController) Delete(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var used int64
	if err := h.DB.WithContext(c.UserContext()).Raw(`
		SELECT (SELECT COUNT(*) FROM registrants WHERE jalur_id = ? AND deleted_at IS NULL)
		     + (SELECT COUNT(*) FROM biaya WHERE jalur_id = ? AND deleted_at IS NULL)`, m.ID, m.ID).
		Scan(&used).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	if used > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Jalur masih dipakai pendaftar atau biaya")
	}

	if err := h.DB.WithContext(c.UserContext()).Delete(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonDeleted(c, "Jalur berhasil dihapus", fiber.Map{"id": m.ID})
}
