package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/features/master/jenjang/dto"
	"ppdb_backend/internals/features/master/jenjang/model"
	"ppdb_backend/internals/features/master/jenjang/repository"
	helper "ppdb_backend/internals/helpers"
)

var validate = helper.NewValidator()

type JenjangController struct {
	DB *gorm.DB
}

func NewJenjangController(db *gorm.DB) *JenjangController {
	return &JenjangController{DB: db}
}

func (h *JenjangController) find(c *fiber.Ctx) (*model.Jenjang, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.Jenjang
	if err := h.DB.WithContext(c.UserContext()).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Jenjang tidak ditemukan")
		}
		return nil, helper.MapPGError(err)
	}
	return &m, nil
}

func badDocuments(c *fiber.Ctx, bad []string) error {
	return helper.JsonValidationError(c, map[string][]string{
		"required_documents": {"Jenis dokumen tidak dikenal: " + strings.Join(bad, ", ")},
	})
}

// GET /api/a/jenjang
func (h *JenjangController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "sort_order", "asc", helper.DefaultOpts)
	q := h.DB.WithContext(c.UserContext()).Model(&model.Jenjang{})

	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("name ILIKE ?", "%"+s+"%")
	}
	if v := c.Query("is_active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			q = q.Where("is_active = ?", b)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	order, _ := p.SafeOrderClause(map[string]string{
		"sort_order": "sort_order",
		"name":       "name",
		"quota":      "quota",
		"created_at": "created_at",
	}, "sort_order")

	var rows []model.Jenjang
	if err := q.Order(order).Order("name ASC").Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}

	counts, err := repository.AcceptedCounts(c.UserContext(), h.DB)
	if err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	out := make([]dto.JenjangAvailability, 0, len(rows))
	for _, j := range rows {
		out = append(out, dto.NewAvailability(j, counts[j.ID]))
	}
	return helper.JsonList(c, "Daftar jenjang", out, helper.BuildMeta(total, p))
}

// GET /api/public/jenjang
func (h *JenjangController) ListPublic(c *fiber.Ctx) error {
	rows, err := repository.ListAvailability(c.UserContext(), h.DB)
	if err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonOK(c, "Daftar jenjang", rows)
}

// GET /api/a/jenjang/:id
func (h *JenjangController) Get(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Detail jenjang", m)
}

// POST /api/a/jenjang
func (h *JenjangController) Create(c *fiber.Ctx) error {
	var req dto.CreateJenjangRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	docs, bad := dto.NormalizeDocuments(req.RequiredDocuments)
	if len(bad) > 0 {
		return badDocuments(c, bad)
	}

	m := req.ToModel(docs)
	base := req.Slug
	if strings.TrimSpace(base) == "" {
		base = req.Name
	}
	slug, err := helper.EnsureUniqueSlugCI(c.UserContext(), h.DB, "jenjang", "slug", helper.Slugify(base, 120), "", 140)
	if err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	m.Slug = slug

	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonCreated(c, "Jenjang berhasil dibuat", m)
}

// PATCH /api/a/jenjang/:id
func (h *JenjangController) Update(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateJenjangRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	var docs []string
	if req.RequiredDocuments != nil {
		norm, bad := dto.NormalizeDocuments(*req.RequiredDocuments)
		if len(bad) > 0 {
			return badDocuments(c, bad)
		}
		docs = norm
	}
	req.Apply(m, docs)

	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slug, err := helper.EnsureUniqueSlugCI(c.UserContext(), h.DB, "jenjang", "slug", helper.Slugify(*req.Slug, 120), m.ID.String(), 140)
		if err != nil {
			return helper.FromFiberError(c, helper.MapPGError(err))
		}
		m.Slug = slug
	}

	if err := h.DB.WithContext(c.UserContext()).Save(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonUpdated(c, "Jenjang berhasil diperbarui", m)
}

// DELETE /api/a/jenjang/:id
func (h *JenjangController) Delete(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var used int64
	if err := h.DB.WithContext(c.UserContext()).Raw(`
		SELECT (SELECT COUNT(*) FROM registrants WHERE jenjang_id = ? AND deleted_at IS NULL)
		     + (SELECT COUNT(*) FROM biaya WHERE jenjang_id = ? AND deleted_at IS NULL)`, m.ID, m.ID).
		Scan(&used).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	if used > 0 {
		return helper.JsonError(c, fiber.StatusConflict, "Jenjang masih dipakai pendaftar atau biaya")
	}

	if err := h.DB.WithContext(c.UserContext()).Delete(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonDeleted(c, "Jenjang berhasil dihapus", fiber.Map{"id": m.ID})
}
