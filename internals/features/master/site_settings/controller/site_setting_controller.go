package controller

import (
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ppdb_backend/internals/features/master/site_settings/dto"
	"ppdb_backend/internals/features/master/site_settings/model"
	helper "ppdb_backend/internals/helpers"
)

var validate = helper.NewValidator()

type SiteSettingController struct {
	DB *gorm.DB
}

func NewSiteSettingController(db *gorm.DB) *SiteSettingController {
	return &SiteSettingController{DB: db}
}

// GET /api/a/site-settings
func (h *SiteSettingController) List(c *fiber.Ctx) error {
	var rows []model.SiteSetting
	if err := h.DB.WithContext(c.UserContext()).Order("key ASC").Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonOK(c, "Pengaturan situs", fiber.Map{
		"items":    rows,
		"settings": model.ToMap(rows),
	})
}

// PUT /api/a/site-settings  {settings: {key: value}}
func (h *SiteSettingController) Upsert(c *fiber.Ctx) error {
	var req dto.UpsertSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	rows := make([]model.SiteSetting, 0, len(req.Settings))
	for k, v := range req.Settings {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		rows = append(rows, model.SiteSetting{Key: k, Value: strings.TrimSpace(v)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })

	err := h.DB.WithContext(c.UserContext()).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonUpdated(c, "Pengaturan disimpan", rows)
}

// DELETE /api/a/site-settings/:key
func (h *SiteSettingController) Delete(c *fiber.Ctx) error {
	key := strings.ToLower(strings.TrimSpace(c.Params("key")))
	res := h.DB.WithContext(c.UserContext()).Delete(&model.SiteSetting{}, "key = ?", key)
	if res.Error != nil {
		return helper.FromFiberError(c, helper.MapPGError(res.Error))
	}
	if res.RowsAffected == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "Pengaturan tidak ditemukan")
	}
	return helper.JsonDeleted(c, "Pengaturan dihapus", fiber.Map{"key": key})
}
