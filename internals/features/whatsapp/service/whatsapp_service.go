package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/whatsapp/model"
	"ppdb_backend/internals/features/whatsapp/repository"
)

var (
	ErrNotFound        = repository.ErrNotFound
	ErrInvalidAudience = errors.New("audience tidak valid")
	ErrMessageRequired = errors.New("template_code atau body wajib diisi")
	ErrNoRecipients    = errors.New("tidak ada penerima yang cocok")
	ErrUnknownEvent    = errors.New("event notifikasi tidak dikenal")
)

type Service struct {
	Repo       repository.Repository
	Dispatcher *Dispatcher
	SchoolName string
	Timeout    time.Duration

	wg sync.WaitGroup
}

func New(repo repository.Repository, d *Dispatcher, schoolName string) *Service {
	return &Service{Repo: repo, Dispatcher: d, SchoolName: schoolName, Timeout: 30 * time.Second}
}

// RegistrantVars: variabel standar dari data pendaftar.
func (s *Service) RegistrantVars(r *repository.RegistrantInfo) map[string]string {
	status := constants.RegistrantStatusLabel[r.Status]
	if status == "" {
		status = r.Status
	}
	return map[string]string{
		"nama":           r.FullName,
		"no_pendaftaran": r.RegistrationNumber,
		"jalur":          orDash(r.JalurName),
		"jenjang":        orDash(r.JenjangName),
		"status":         status,
		"sekolah":        s.SchoolName,
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func registrantRecipient(r *repository.RegistrantInfo) Recipient {
	id := r.ID
	return Recipient{
		Name:         r.FullName,
		Phone:        r.ContactPhone(),
		Audience:     model.AudienceCalonSiswa,
		Gender:       r.Gender,
		RegistrantID: &id,
	}
}

// staffRecipients: kontak role dengan gender sama + kontak tanpa gender.
func (s *Service) staffRecipients(ctx context.Context, role, gender string, registrantID *uuid.UUID) ([]Recipient, error) {
	contacts, err := s.Repo.Contacts(ctx, role, gender)
	if err != nil {
		return nil, err
	}
	out := make([]Recipient, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, Recipient{
			Name:         c.Name,
			Phone:        c.Phone,
			Audience:     role,
			Gender:       c.Gender,
			RegistrantID: registrantID,
		})
	}
	return out, nil
}

/* =========================
   Notifikasi event
========================= */

// NotifyAsync menjalankan Notify di goroutine; error hanya dicatat.
func (s *Service) NotifyAsync(event string, registrantID uuid.UUID, vars map[string]string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				zap.L().Error("panic notifikasi WhatsApp", zap.String("event", event), zap.Any("panic", rec))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
		defer cancel()

		if _, err := s.Notify(ctx, event, registrantID, vars); err != nil {
			zap.L().Warn("notifikasi WhatsApp gagal",
				zap.String("event", event), zap.String("registrant_id", registrantID.String()), zap.Error(err))
		}
	}()
}

// Wait menunggu semua notifikasi async selesai (shutdown & test).
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) Notify(ctx context.Context, event string, registrantID uuid.UUID, vars map[string]string) ([]Result, error) {
	audiences, ok := EventAudiences[event]
	if !ok {
		return nil, ErrUnknownEvent
	}
	info, err := s.Repo.Registrant(ctx, registrantID)
	if err != nil {
		return nil, fmt.Errorf("registrant %s: %w", registrantID, err)
	}

	var recipients []Recipient
	for _, aud := range audiences {
		if aud == model.AudienceCalonSiswa {
			recipients = append(recipients, registrantRecipient(info))
			continue
		}
		staff, err := s.staffRecipients(ctx, aud, info.Gender, &info.ID)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, staff...)
	}
	if len(recipients) == 0 {
		return nil, nil
	}

	templates, err := s.Repo.TemplatesFor(ctx, event)
	if err != nil {
		return nil, err
	}
	return s.Dispatcher.Dispatch(ctx, Job{
		Event:        event,
		TemplateCode: event,
		Templates:    templates,
		Vars:         mergeVars(s.RegistrantVars(info), vars),
		Recipients:   recipients,
	}), nil
}

/* =========================
   Preview & broadcast
========================= */

type PreviewInput struct {
	TemplateCode string
	Body         string
	Audience     string
	Gender       string
	RegistrantID *uuid.UUID
	Phone        string
	Vars         map[string]string
}

type Preview struct {
	Body         string   `json:"body"`
	Message      string   `json:"message"`
	Sapaan       string   `json:"sapaan"`
	Placeholders []string `json:"placeholders"`
	Unresolved   []string `json:"unresolved"`
	URL          string   `json:"url,omitempty"`
}

func (s *Service) Preview(ctx context.Context, in PreviewInput) (*Preview, error) {
	if !constants.Contains(model.Audiences, in.Audience) {
		return nil, ErrInvalidAudience
	}
	vars := map[string]string{"sekolah": s.SchoolName}
	gender := in.Gender
	if in.RegistrantID != nil {
		info, err := s.Repo.Registrant(ctx, *in.RegistrantID)
		if err != nil {
			return nil, err
		}
		vars = s.RegistrantVars(info)
		if gender == "" {
			gender = info.Gender
		}
		if in.Phone == "" && in.Audience == model.AudienceCalonSiswa {
			in.Phone = info.ContactPhone()
		}
	}

	body := in.Body
	if body == "" {
		if in.TemplateCode == "" {
			return nil, ErrMessageRequired
		}
		templates, err := s.Repo.TemplatesFor(ctx, in.TemplateCode)
		if err != nil {
			return nil, err
		}
		body = Resolve(templates, in.TemplateCode, in.Audience, gender)
		if body == "" {
			return nil, ErrEmptyTemplate
		}
	}

	sapaan := Sapaan(in.Audience, gender)
	vars = mergeVars(vars, map[string]string{"sapaan": sapaan}, in.Vars)
	msg := Render(body, vars)

	out := &Preview{
		Body:         body,
		Message:      msg,
		Sapaan:       sapaan,
		Placeholders: Placeholders(body),
		Unresolved:   Placeholders(msg),
	}
	if phone, ok := NormalizePhone(in.Phone); ok {
		out.URL = Link(phone, msg)
	}
	return out, nil
}

type BroadcastInput struct {
	Audience     string
	TemplateCode string
	Body         string
	Filter       repository.RegistrantFilter
	Vars         map[string]string
	CreatedBy    *uuid.UUID
}

type BroadcastResult struct {
	Total   int            `json:"total"`
	Summary map[string]int `json:"summary"`
	Results []Result       `json:"results"`
}

// Broadcast: calon_siswa disaring filter; panitia/bendahara memakai kontak aktif (gender opsional).
func (s *Service) Broadcast(ctx context.Context, in BroadcastInput) (*BroadcastResult, error) {
	if !constants.Contains(model.Audiences, in.Audience) {
		return nil, ErrInvalidAudience
	}
	if in.Body == "" && in.TemplateCode == "" {
		return nil, ErrMessageRequired
	}

	var recipients []Recipient
	if in.Audience == model.AudienceCalonSiswa {
		regs, err := s.Repo.Registrants(ctx, in.Filter)
		if err != nil {
			return nil, err
		}
		for i := range regs {
			rc := registrantRecipient(&regs[i])
			rc.Vars = s.RegistrantVars(&regs[i])
			recipients = append(recipients, rc)
		}
	} else {
		staff, err := s.staffRecipients(ctx, in.Audience, in.Filter.Gender, nil)
		if err != nil {
			return nil, err
		}
		recipients = staff
	}
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	job := Job{
		Event:        constants.EventBroadcast,
		TemplateCode: in.TemplateCode,
		Body:         in.Body,
		Vars:         mergeVars(map[string]string{"sekolah": s.SchoolName}, in.Vars),
		Recipients:   recipients,
		CreatedBy:    in.CreatedBy,
	}
	if in.Body == "" {
		templates, err := s.Repo.TemplatesFor(ctx, in.TemplateCode)
		if err != nil {
			return nil, err
		}
		job.Templates = templates
	}

	results := s.Dispatcher.Dispatch(ctx, job)
	return &BroadcastResult{Total: len(results), Summary: Count(results), Results: results}, nil
}
