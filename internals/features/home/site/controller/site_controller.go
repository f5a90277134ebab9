package controller

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	jalurModel "ppdb_backend/internals/features/master/jalur/model"
	jenjangDTO "ppdb_backend/internals/features/master/jenjang/dto"
	jenjangRepo "ppdb_backend/internals/features/master/jenjang/repository"
	settingModel "ppdb_backend/internals/features/master/site_settings/model"
	annModel "ppdb_backend/internals/features/ppdb/announcements/model"
	annRepo "ppdb_backend/internals/features/ppdb/announcements/repository"
	helper "ppdb_backend/internals/helpers"
)

const latestAnnouncements = 5

type SiteController struct {
	DB         *gorm.DB
	SchoolName string
	Now        func() time.Time
}

func NewSiteController(db *gorm.DB, schoolName string) *SiteController {
	return &SiteController{DB: db, SchoolName: schoolName, Now: time.Now}
}

type Overview struct {
	Settings         map[string]string                `json:"settings"`
	RegistrationOpen bool                             `json:"registration_open"`
	Jalur            []jalurModel.Jalur               `json:"jalur"`
	Jenjang          []jenjangDTO.JenjangAvailability `json:"jenjang"`
	Announcements    []annModel.Announcement          `json:"announcements"`
}

func (h *SiteController) load(ctx context.Context) (*Overview, error) {
	out := &Overview{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var rows []settingModel.SiteSetting
		if err := h.DB.WithContext(gctx).Find(&rows).Error; err != nil {
			return err
		}
		out.Settings = settingModel.ToMap(rows)
		return nil
	})
	g.Go(func() error {
		return h.DB.WithContext(gctx).
			Where("is_active = TRUE").
			Order("sort_order ASC, name ASC").
			Find(&out.Jalur).Error
	})
	g.Go(func() error {
		rows, err := jenjangRepo.ListAvailability(gctx, h.DB)
		out.Jenjang = rows
		return err
	})
	g.Go(func() error {
		rows, _, err := annRepo.Published(gctx, h.DB, []string{constants.TargetAll},
			helper.Params{Page: 1, PerPage: latestAnnouncements})
		out.Announcements = rows
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if out.Settings[settingModel.KeySchoolName] == "" && h.SchoolName != "" {
		out.Settings[settingModel.KeySchoolName] = h.SchoolName
	}
	out.RegistrationOpen = settingModel.RegistrationOpen(out.Settings, h.Now())
	return out, nil
}

// GET /api/public/site
func (h *SiteController) Overview(c *fiber.Ctx) error {
	out, err := h.load(c.UserContext())
	if err != nil {
		return helper.FromFiberError(c, helper.MapPGError(err))
	}
	return helper.JsonOK(c, "Informasi PPDB", out)
}
