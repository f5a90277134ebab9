package controller

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ppdb_backend/internals/features/master/contacts/dto"
	"ppdb_backend/internals/features/master/contacts/model"
	helper "ppdb_backend/internals/helpers"
)

var validate = helper.NewValidator()

type ContactController struct {
	DB *gorm.DB
}

func NewContactController(db *gorm.DB) *ContactController {
	return &ContactController{DB: db}
}

func (h *ContactController) find(c *fiber.Ctx) (*model.Contact, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.Contact
	if err := h.DB.WithContext(c.UserContext()).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Kontak tidak ditemukan")
		}
		return nil, helper.MapPGError(err)
	}
	return &m, nil
}

// GET /api/a/contacts?role=&gender=&q=&is_active=
func (h *ContactController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "name", "asc", helper.DefaultOpts)
	q := h.DB.WithContext(c.UserContext()).Model(&model.Contact{})

	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("(name ILIKE ? OR phone ILIKE ?)", "%"+s+"%", "%"+s+"%")
	}
	if r := c.Query("role"); r != "" {
		q = q.Where("role = ?", r)
	}
	if g := strings.ToUpper(c.Query("gender")); g != "" {
		q = q.Where("gender = ?", g)
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
		"name":       "name",
		"role":       "role",
		"created_at": "created_at",
	}, "name")

	var rows []model.Contact
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonList(c, "Daftar kontak", rows, helper.BuildMeta(total, p))
}

// GET /api/a/contacts/:id
func (h *ContactController) Get(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Detail kontak", m)
}

// POST /api/a/contacts
func (h *ContactController) Create(c *fiber.Ctx) error {
	var req dto.CreateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Gender = strings.ToUpper(strings.TrimSpace(req.Gender))
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m := req.ToModel()
	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonCreated(c, "Kontak berhasil dibuat", m)
}

// PATCH /api/a/contacts/:id
func (h *ContactController) Update(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.Gender != nil {
		g := strings.ToUpper(strings.TrimSpace(*req.Gender))
		req.Gender = &g
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	up := req.ToUpdates()
	if len(up) == 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "Tidak ada perubahan")
	}
	if err := h.DB.WithContext(c.UserContext()).Model(m).Updates(up).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	if err := h.DB.WithContext(c.UserContext()).First(m, "id = ?", m.ID).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonUpdated(c, "Kontak berhasil diperbarui", m)
}

// DELETE /api/a/contacts/:id (hard delete)
func (h *ContactController) Delete(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Delete(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonDeleted(c, "Kontak berhasil dihapus", fiber.Map{"id": m.ID})
}
