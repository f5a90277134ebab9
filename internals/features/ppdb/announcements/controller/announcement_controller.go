package controller

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/announcements/dto"
	"ppdb_backend/internals/features/ppdb/announcements/model"
	"ppdb_backend/internals/features/ppdb/announcements/repository"
	fileController "ppdb_backend/internals/features/ppdb/registrant_files/controller"
	fileService "ppdb_backend/internals/features/ppdb/registrant_files/service"
	helper "ppdb_backend/internals/helpers"
	"ppdb_backend/internals/helpers/storage"
)

var validate = helper.NewValidator()

const tableName = "announcements"

type AnnouncementController struct {
	DB       *gorm.DB
	Store    storage.BlobStore
	MaxBytes int64
	Now      func() time.Time
}

func NewAnnouncementController(db *gorm.DB, store storage.BlobStore, maxBytes int64) *AnnouncementController {
	return &AnnouncementController{DB: db, Store: store, MaxBytes: maxBytes, Now: time.Now}
}

func (h *AnnouncementController) find(c *fiber.Ctx) (*model.Announcement, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.Announcement
	if err := h.DB.WithContext(c.UserContext()).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Pengumuman tidak ditemukan")
		}
		return nil, helper.MapPGError(err)
	}
	return &m, nil
}

/* =========================
   Admin + panitia (/api/a)
========================= */

// GET /api/a/announcements
func (h *AnnouncementController) List(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "created_at", "desc", helper.DefaultOpts)
	q := h.DB.WithContext(c.UserContext()).Model(&model.Announcement{})

	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("title ILIKE ?", "%"+s+"%")
	}
	if t := strings.ToLower(strings.TrimSpace(c.Query("target"))); t != "" {
		if !constants.Contains(constants.AnnouncementTargets, t) {
			return helper.JsonError(c, fiber.StatusBadRequest, "target tidak valid")
		}
		q = q.Where("target = ?", t)
	}
	if v := c.Query("is_published"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			q = q.Where("is_published = ?", b)
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	order, _ := p.SafeOrderClause(map[string]string{
		"created_at":   "created_at",
		"published_at": "published_at",
		"title":        "title",
	}, "created_at")

	var rows []model.Announcement
	if err := q.Order(order).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonList(c, "Daftar pengumuman", rows, helper.BuildMeta(total, p))
}

// GET /api/a/announcements/:id
func (h *AnnouncementController) Get(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Detail pengumuman", m)
}

// POST /api/a/announcements
func (h *AnnouncementController) Create(c *fiber.Ctx) error {
	var req dto.CreateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Normalize()
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	m := req.ToModel(h.Now())
	if uid, err := helper.GetUserIDFromToken(c); err == nil {
		m.CreatedBy = &uid
	}
	base := req.Slug
	if strings.TrimSpace(base) == "" {
		base = req.Title
	}
	slug, err := helper.EnsureUniqueSlugCI(c.UserContext(), h.DB, tableName, "slug", helper.Slugify(base, 200), "", 220)
	if err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	m.Slug = slug

	if err := h.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonCreated(c, "Pengumuman berhasil dibuat", m)
}

// PATCH /api/a/announcements/:id
func (h *AnnouncementController) Update(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.UpdateAnnouncementRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	oldObject := m.AttachmentObject
	req.Apply(m)

	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slug, err := helper.EnsureUniqueSlugCI(c.UserContext(), h.DB, tableName, "slug", helper.Slugify(*req.Slug, 200), m.ID.String(), 220)
		if err != nil {
			return helper.FromFiberError(c, helper.MapPGError(err))
		}
		m.Slug = slug
	}

	if err := h.DB.WithContext(c.UserContext()).Save(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	if oldObject != "" && m.AttachmentObject == "" {
		h.deleteObject(c, oldObject)
	}
	return helper.JsonUpdated(c, "Pengumuman berhasil diperbarui", m)
}

// PATCH /api/a/announcements/:id/publish
func (h *AnnouncementController) Publish(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req dto.PublishRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	m.SetPublished(*req.IsPublished, h.Now())

	if err := h.DB.WithContext(c.UserContext()).Model(m).
		Select("is_published", "published_at").
		Updates(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	msg := "Pengumuman diterbitkan"
	if !m.IsPublished {
		msg = "Pengumuman ditarik"
	}
	return helper.JsonUpdated(c, msg, m)
}

// POST /api/a/announcements/:id/attachment (multipart: file)
func (h *AnnouncementController) UploadAttachment(c *fiber.Ctx) error {
	if h.Store == nil {
		return helper.JsonError(c, fiber.StatusServiceUnavailable, "Storage belum dikonfigurasi")
	}
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	name, data, err := fileController.ReadFormFile(c, "file", h.MaxBytes)
	if err != nil {
		if errors.Is(err, fileService.ErrTooLarge) {
			return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		}
		return helper.FromFiberError(c, err)
	}

	st, err := storage.Upload(c.UserContext(), h.Store, "announcements/"+m.ID.String(), name, data, &storage.DocumentWebP)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedImage) {
			return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
		}
		return helper.JsonError(c, fiber.StatusBadGateway, "Gagal mengunggah lampiran")
	}

	oldObject := m.AttachmentObject
	m.AttachmentURL, m.AttachmentObject = st.URL, st.Key
	if err := h.DB.WithContext(c.UserContext()).Model(m).
		Select("attachment_url", "attachment_object").
		Updates(m).Error; err != nil {
		h.deleteObject(c, st.Key)
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	if oldObject != "" {
		h.deleteObject(c, oldObject)
	}
	return helper.JsonUpdated(c, "Lampiran diunggah", m)
}

// DELETE /api/a/announcements/:id
func (h *AnnouncementController) Delete(c *fiber.Ctx) error {
	m, err := h.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := h.DB.WithContext(c.UserContext()).Delete(m).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	if m.AttachmentObject != "" {
		h.deleteObject(c, m.AttachmentObject)
	}
	return helper.JsonDeleted(c, "Pengumuman berhasil dihapus", fiber.Map{"id": m.ID})
}

func (h *AnnouncementController) deleteObject(c *fiber.Ctx, key string) {
	if h.Store == nil {
		return
	}
	if err := h.Store.Delete(c.UserContext(), key); err != nil {
		zap.L().Warn("hapus lampiran gagal", zap.String("key", key), zap.Error(err))
	}
}

/* =========================
   Feed (role-aware) & publik
========================= */

// GET /api/u/announcements  &  GET /api/a/announcements/feed
func (h *AnnouncementController) Feed(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "published_at", "desc", helper.DefaultOpts)
	targets := model.VisibleTargets(helper.GetRoleFromToken(c))
	rows, total, err := repository.Published(c.UserContext(), h.DB, targets, p)
	if err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonList(c, "Pengumuman", rows, helper.BuildMeta(total, p))
}

// GET /api/public/announcements
func (h *AnnouncementController) Public(c *fiber.Ctx) error {
	p := helper.ParseFiber(c, "published_at", "desc", helper.DefaultOpts)
	rows, total, err := repository.Published(c.UserContext(), h.DB, []string{constants.TargetAll}, p)
	if err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonList(c, "Pengumuman", rows, helper.BuildMeta(total, p))
}

// GET /api/public/announcements/:slug
func (h *AnnouncementController) PublicDetail(c *fiber.Ctx) error {
	slug := strings.ToLower(strings.TrimSpace(c.Params("slug")))
	var m model.Announcement
	err := h.DB.WithContext(c.UserContext()).
		Where("slug = ? AND is_published = TRUE AND target = ?", slug, constants.TargetAll).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Pengumuman tidak ditemukan")
		}
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonOK(c, "Detail pengumuman", m)
}
