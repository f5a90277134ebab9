package seeds

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ppdb_backend/internals/constants"
	biayaModel "ppdb_backend/internals/features/master/biaya/model"
	contactModel "ppdb_backend/internals/features/master/contacts/model"
	jalurModel "ppdb_backend/internals/features/master/jalur/model"
	jenjangModel "ppdb_backend/internals/features/master/jenjang/model"
	settingModel "ppdb_backend/internals/features/master/site_settings/model"
	authModel "ppdb_backend/internals/features/users/auth/model"
	waModel "ppdb_backend/internals/features/whatsapp/model"
	helper "ppdb_backend/internals/helpers"
)

//go:embed data/ppdb_seed.yaml
var defaultSeed []byte

type JalurSeed struct {
	Name          string `yaml:"name"`
	Description   string `yaml:"description"`
	IsScholarship bool   `yaml:"is_scholarship"`
	SortOrder     int    `yaml:"sort_order"`
}

type JenjangSeed struct {
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description"`
	Quota             int      `yaml:"quota"`
	RequiredDocuments []string `yaml:"required_documents"`
	SortOrder         int      `yaml:"sort_order"`
}

// BiayaSeed: Jalur/Jenjang berisi slug; kosong = berlaku untuk semua.
type BiayaSeed struct {
	Name        string `yaml:"name"`
	AmountIDR   int64  `yaml:"amount_idr"`
	Description string `yaml:"description"`
	Jalur       string `yaml:"jalur"`
	Jenjang     string `yaml:"jenjang"`
	IsMandatory *bool  `yaml:"is_mandatory"`
	SortOrder   int    `yaml:"sort_order"`
}

type ContactSeed struct {
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Gender string `yaml:"gender"`
	Phone  string `yaml:"phone"`
}

type TemplateSeed struct {
	Code     string `yaml:"code"`
	Audience string `yaml:"audience"`
	Gender   string `yaml:"gender"`
	Title    string `yaml:"title"`
	Body     string `yaml:"body"`
}

type File struct {
	Settings  map[string]string `yaml:"site_settings"`
	Jalur     []JalurSeed       `yaml:"jalur"`
	Jenjang   []JenjangSeed     `yaml:"jenjang"`
	Biaya     []BiayaSeed       `yaml:"biaya"`
	Contacts  []ContactSeed     `yaml:"contacts"`
	Templates []TemplateSeed    `yaml:"wa_templates"`
}

type Admin struct {
	Email    string
	Password string
}

// Load membaca file seed; path kosong = seed bawaan.
func Load(path string) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return Parse(defaultSeed)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("seed yaml: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	var errs []error
	for i, b := range f.Biaya {
		if b.AmountIDR <= 0 {
			errs = append(errs, fmt.Errorf("biaya[%d] %q: amount_idr harus > 0", i, b.Name))
		}
	}
	for i, j := range f.Jenjang {
		if j.Quota < 0 {
			errs = append(errs, fmt.Errorf("jenjang[%d] %q: quota tidak boleh negatif", i, j.Name))
		}
		for _, d := range j.RequiredDocuments {
			if !constants.IsValidDocumentKind(d) {
				errs = append(errs, fmt.Errorf("jenjang[%d] %q: dokumen %q tidak dikenal", i, j.Name, d))
			}
		}
	}
	for i, c := range f.Contacts {
		if c.Role != constants.RolePanitia && c.Role != constants.RoleBendahara {
			errs = append(errs, fmt.Errorf("contacts[%d]: role %q tidak valid", i, c.Role))
		}
		if c.Gender != "" && c.Gender != constants.GenderMale && c.Gender != constants.GenderFemale {
			errs = append(errs, fmt.Errorf("contacts[%d]: gender %q tidak valid", i, c.Gender))
		}
	}
	for i, t := range f.Templates {
		if !constants.Contains(waModel.Audiences, t.Audience) {
			errs = append(errs, fmt.Errorf("wa_templates[%d]: audience %q tidak valid", i, t.Audience))
		}
		if strings.TrimSpace(t.Code) == "" || strings.TrimSpace(t.Body) == "" {
			errs = append(errs, fmt.Errorf("wa_templates[%d]: code & body wajib", i))
		}
	}
	return errors.Join(errs...)
}

/* =========================
   Runner (idempotent)
========================= */

func Run(ctx context.Context, db *gorm.DB, f *File, admin Admin) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedSettings(tx, f.Settings); err != nil {
			return err
		}
		jalurIDs, err := seedJalur(tx, f.Jalur)
		if err != nil {
			return err
		}
		jenjangIDs, err := seedJenjang(tx, f.Jenjang)
		if err != nil {
			return err
		}
		if err := seedBiaya(tx, f.Biaya, jalurIDs, jenjangIDs); err != nil {
			return err
		}
		if err := seedContacts(tx, f.Contacts); err != nil {
			return err
		}
		if err := seedTemplates(tx, f.Templates); err != nil {
			return err
		}
		return seedAdmin(tx, admin)
	})
}

// Setting yang sudah ada tidak ditimpa (bisa jadi sudah diubah admin).
func seedSettings(tx *gorm.DB, settings map[string]string) error {
	if len(settings) == 0 {
		return nil
	}
	rows := make([]settingModel.SiteSetting, 0, len(settings))
	for k, v := range settings {
		rows = append(rows, settingModel.SiteSetting{Key: k, Value: v})
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

func seedJalur(tx *gorm.DB, items []JalurSeed) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(items))
	for _, it := range items {
		slug := helper.Slugify(it.Name, 140)
		var m jalurModel.Jalur
		err := tx.Where("slug = ?", slug).
			Attrs(jalurModel.Jalur{
				Name: it.Name, Slug: slug, Description: it.Description,
				IsScholarship: it.IsScholarship, IsActive: true, SortOrder: it.SortOrder,
			}).
			FirstOrCreate(&m).Error
		if err != nil {
			return nil, fmt.Errorf("jalur %q: %w", it.Name, err)
		}
		ids[slug] = m.ID
	}
	zap.L().Info("🌱 jalur", zap.Int("count", len(ids)))
	return ids, nil
}

func seedJenjang(tx *gorm.DB, items []JenjangSeed) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(items))
	for _, it := range items {
		slug := helper.Slugify(it.Name, 140)
		docs := it.RequiredDocuments
		if docs == nil {
			docs = []string{}
		}
		var m jenjangModel.Jenjang
		err := tx.Where("slug = ?", slug).
			Attrs(jenjangModel.Jenjang{
				Name: it.Name, Slug: slug, Description: it.Description, Quota: it.Quota,
				RequiredDocuments: pq.StringArray(docs), IsActive: true, SortOrder: it.SortOrder,
			}).
			FirstOrCreate(&m).Error
		if err != nil {
			return nil, fmt.Errorf("jenjang %q: %w", it.Name, err)
		}
		ids[slug] = m.ID
	}
	zap.L().Info("🌱 jenjang", zap.Int("count", len(ids)))
	return ids, nil
}

func refID(ids map[string]uuid.UUID, slug, kind string) (*uuid.UUID, error) {
	if slug == "" {
		return nil, nil
	}
	id, ok := ids[slug]
	if !ok {
		return nil, fmt.Errorf("%s %q tidak ada di seed", kind, slug)
	}
	return &id, nil
}

// Biaya tidak punya slug; unik per (name, jalur, jenjang).
func seedBiaya(tx *gorm.DB, items []BiayaSeed, jalurIDs, jenjangIDs map[string]uuid.UUID) error {
	for _, it := range items {
		jalurID, err := refID(jalurIDs, it.Jalur, "jalur")
		if err != nil {
			return err
		}
		jenjangID, err := refID(jenjangIDs, it.Jenjang, "jenjang")
		if err != nil {
			return err
		}
		mandatory := true
		if it.IsMandatory != nil {
			mandatory = *it.IsMandatory
		}

		q := tx.Where("name = ?", it.Name)
		if jalurID == nil {
			q = q.Where("jalur_id IS NULL")
		} else {
			q = q.Where("jalur_id = ?", *jalurID)
		}
		if jenjangID == nil {
			q = q.Where("jenjang_id IS NULL")
		} else {
			q = q.Where("jenjang_id = ?", *jenjangID)
		}

		var m biayaModel.Biaya
		err = q.Attrs(biayaModel.Biaya{
			Name: it.Name, AmountIDR: it.AmountIDR, Description: it.Description,
			JalurID: jalurID, JenjangID: jenjangID, IsMandatory: mandatory,
			IsActive: true, SortOrder: it.SortOrder,
		}).FirstOrCreate(&m).Error
		if err != nil {
			return fmt.Errorf("biaya %q: %w", it.Name, err)
		}
	}
	zap.L().Info("🌱 biaya", zap.Int("count", len(items)))
	return nil
}

func seedContacts(tx *gorm.DB, items []ContactSeed) error {
	for _, it := range items {
		var m contactModel.Contact
		err := tx.Where("role = ? AND phone = ?", it.Role, it.Phone).
			Attrs(contactModel.Contact{
				Name: it.Name, Role: it.Role, Gender: it.Gender, Phone: it.Phone, IsActive: true,
			}).
			FirstOrCreate(&m).Error
		if err != nil {
			return fmt.Errorf("contact %q: %w", it.Name, err)
		}
	}
	zap.L().Info("🌱 contacts", zap.Int("count", len(items)))
	return nil
}

func seedTemplates(tx *gorm.DB, items []TemplateSeed) error {
	for _, it := range items {
		var m waModel.Template
		err := tx.Where("code = ? AND audience = ? AND gender = ?", it.Code, it.Audience, it.Gender).
			Attrs(waModel.Template{
				Code: it.Code, Audience: it.Audience, Gender: it.Gender,
				Title: it.Title, Body: it.Body, IsActive: true,
			}).
			FirstOrCreate(&m).Error
		if err != nil {
			return fmt.Errorf("wa template %s/%s: %w", it.Code, it.Audience, err)
		}
	}
	zap.L().Info("🌱 wa_templates", zap.Int("count", len(items)))
	return nil
}

// seedAdmin membuat admin pertama bila email belum terdaftar.
func seedAdmin(tx *gorm.DB, a Admin) error {
	email := strings.ToLower(strings.TrimSpace(a.Email))
	if email == "" {
		return nil
	}
	if len(a.Password) < 8 {
		return errors.New("SEED_ADMIN_PASSWORD minimal 8 karakter")
	}

	var n int64
	if err := tx.Model(&authModel.User{}).Where("LOWER(email) = ?", email).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		zap.L().Info("🌱 admin sudah ada", zap.String("email", email))
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u := authModel.User{
		UserName: helper.Slugify(strings.Split(email, "@")[0], 50),
		FullName: "Administrator",
		Email:    email,
		Password: string(hash),
		Role:     constants.RoleAdmin,
		IsActive: true,
	}
	if err := tx.Create(&u).Error; err != nil {
		return err
	}
	zap.L().Info("🌱 admin dibuat", zap.String("email", email))
	return nil
}
