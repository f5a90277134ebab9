package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/registrants/dto"
	"ppdb_backend/internals/features/ppdb/registrants/model"
	"ppdb_backend/internals/features/ppdb/registrants/repository"
	helper "ppdb_backend/internals/helpers"
)

var (
	ErrNotFound          = repository.ErrNotFound
	ErrNotDraft          = errors.New("biodata hanya bisa diubah saat status draft")
	ErrNoChanges         = errors.New("tidak ada perubahan")
	ErrInvalidTransition = errors.New("perubahan status tidak diizinkan")
	ErrQuotaFull         = errors.New("kuota jenjang sudah penuh")
	ErrNoJenjang         = errors.New("pendaftar belum memilih jenjang")
	ErrInvalidJalur      = errors.New("jalur tidak ditemukan atau nonaktif")
	ErrInvalidJenjang    = errors.New("jenjang tidak ditemukan atau nonaktif")
)

// IncompleteError dikembalikan Submit bila biodata/dokumen belum lengkap.
type IncompleteError struct {
	Completeness dto.Completeness
}

func (e *IncompleteError) Error() string { return "data pendaftaran belum lengkap" }

type Notifier interface {
	NotifyAsync(event string, registrantID uuid.UUID, vars map[string]string)
}

// PaymentSummarizer menyusun ringkasan pembayaran untuk detail pendaftar.
type PaymentSummarizer interface {
	SummaryFor(ctx context.Context, r *model.Registrant) (any, error)
}

type Service struct {
	Repo     repository.Repository
	Notify   Notifier
	Payments PaymentSummarizer
	Now      func() time.Time
}

func New(repo repository.Repository, notify Notifier) *Service {
	return &Service{Repo: repo, Notify: notify, Now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) notify(event string, id uuid.UUID, vars map[string]string) {
	if s.Notify != nil {
		s.Notify.NotifyAsync(event, id, vars)
	}
}

/* =========================
   Rules
========================= */

var transitions = map[string][]string{
	constants.RegistrantDraft:     {constants.RegistrantRejected},
	constants.RegistrantSubmitted: {constants.RegistrantVerified, constants.RegistrantDraft, constants.RegistrantRejected},
	constants.RegistrantVerified:  {constants.RegistrantAccepted, constants.RegistrantRejected},
	constants.RegistrantAccepted:  {constants.RegistrantRejected},
	// rejected -> rejected hanya memperbarui catatan
	constants.RegistrantRejected: {constants.RegistrantRejected},
}

// CanTransition: aturan alur status oleh panitia.
func CanTransition(from, to string) bool {
	return constants.Contains(transitions[from], to)
}

// CheckCompleteness: field wajib + dokumen wajib jenjang.
func CheckCompleteness(r *model.Registrant, uploadedKinds []string, required []string) dto.Completeness {
	var fields []string
	need := func(name string, ok bool) {
		if !ok {
			fields = append(fields, name)
		}
	}
	need("full_name", r.FullName != "")
	need("gender", constants.IsValidGender(r.Gender))
	need("birth_place", r.BirthPlace != "")
	need("birth_date", r.BirthDate != nil)
	need("address", r.Address != "")
	need("phone", r.Phone != "")
	need("jalur_id", r.JalurID != nil)
	need("jenjang_id", r.JenjangID != nil)
	need("parent_name", r.ParentName() != "")

	if len(required) == 0 {
		required = constants.DefaultRequiredDocuments
	}
	var docs []string
	for _, kind := range required {
		if !constants.Contains(uploadedKinds, kind) {
			docs = append(docs, kind)
		}
	}

	return dto.Completeness{
		Complete:         len(fields) == 0 && len(docs) == 0,
		MissingFields:    nonNil(fields),
		MissingDocuments: nonNil(docs),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

/* =========================
   Registrant (self)
========================= */

func (s *Service) Mine(ctx context.Context, userID uuid.UUID) (*model.Registrant, error) {
	return s.Repo.FindByUserID(ctx, userID)
}

func (s *Service) completeness(ctx context.Context, r *model.Registrant) (dto.Completeness, error) {
	files, err := s.Repo.Files(ctx, r.ID)
	if err != nil {
		return dto.Completeness{}, err
	}
	kinds := make([]string, 0, len(files))
	for _, f := range files {
		if f.Status != constants.ReviewRejected {
			kinds = append(kinds, f.Kind)
		}
	}
	var required []string
	if r.JenjangID != nil {
		j, err := s.Repo.FindJenjang(ctx, *r.JenjangID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return dto.Completeness{}, err
		}
		if j != nil {
			required = j.Documents()
		}
	}
	return CheckCompleteness(r, kinds, required), nil
}

// Detail = biodata + berkas + kelengkapan + ringkasan pembayaran.
func (s *Service) Detail(ctx context.Context, r *model.Registrant) (*dto.RegistrantDetail, error) {
	files, err := s.Repo.Files(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	comp, err := s.completeness(ctx, r)
	if err != nil {
		return nil, err
	}
	jalur, jenjang := s.Repo.Names(ctx, r.JalurID, r.JenjangID)
	out := &dto.RegistrantDetail{
		Registrant:  *r,
		JalurName:   jalur,
		JenjangName: jenjang,
		Files:       files,
		Missing:     &comp,
	}
	if s.Payments != nil {
		sum, err := s.Payments.SummaryFor(ctx, r)
		if err != nil {
			zap.L().Warn("ringkasan pembayaran gagal", zap.String("registrant_id", r.ID.String()), zap.Error(err))
		} else {
			out.Payments = sum
		}
	}
	return out, nil
}

func (s *Service) validateRefs(ctx context.Context, req dto.UpdateBiodataRequest) error {
	if req.JalurID != nil {
		ok, err := s.Repo.ActiveExists(ctx, "jalur", *req.JalurID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidJalur
		}
	}
	if req.JenjangID != nil {
		ok, err := s.Repo.ActiveExists(ctx, "jenjang", *req.JenjangID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidJenjang
		}
	}
	return nil
}

// UpdateMine: hanya saat draft.
func (s *Service) UpdateMine(ctx context.Context, userID uuid.UUID, req dto.UpdateBiodataRequest) (*model.Registrant, error) {
	r, err := s.Repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if r.Status != constants.RegistrantDraft {
		return nil, ErrNotDraft
	}
	if err := s.validateRefs(ctx, req); err != nil {
		return nil, err
	}
	if !req.Apply(r) {
		return nil, ErrNoChanges
	}
	if err := s.Repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Submit: draft -> submitted bila lengkap.
func (s *Service) Submit(ctx context.Context, userID uuid.UUID) (*model.Registrant, error) {
	mine, err := s.Repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if mine.Status != constants.RegistrantDraft {
		return nil, ErrNotDraft
	}
	comp, err := s.completeness(ctx, mine)
	if err != nil {
		return nil, err
	}
	if !comp.Complete {
		return nil, &IncompleteError{Completeness: comp}
	}

	now := s.Now()
	r, err := s.Repo.WithLocked(ctx, mine.ID, func(r *model.Registrant, _ repository.QuotaReader) error {
		if r.Status != constants.RegistrantDraft {
			return ErrNotDraft
		}
		r.Status = constants.RegistrantSubmitted
		r.SubmittedAt = &now
		r.StatusNote = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notify(constants.EventRegistrantSubmitted, r.ID, nil)
	return r, nil
}

/* =========================
   Admin
========================= */

func (s *Service) List(ctx context.Context, f dto.ListFilter, p helper.Params) ([]dto.RegistrantListItem, int64, error) {
	return s.Repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Registrant, error) {
	return s.Repo.FindByID(ctx, id)
}

// AdminUpdate: koreksi biodata oleh panitia (tanpa batasan status).
func (s *Service) AdminUpdate(ctx context.Context, id uuid.UUID, req dto.UpdateBiodataRequest) (*model.Registrant, error) {
	r, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateRefs(ctx, req); err != nil {
		return nil, err
	}
	if !req.Apply(r) {
		return nil, ErrNoChanges
	}
	if err := s.Repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Repo.Delete(ctx, id)
}

// ChangeStatus menjalankan transisi status; accepted mengecek kuota jenjang di dalam transaksi.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, to, note string) (*model.Registrant, error) {
	now := s.Now()
	r, err := s.Repo.WithLocked(ctx, id, func(r *model.Registrant, q repository.QuotaReader) error {
		if !CanTransition(r.Status, to) {
			return ErrInvalidTransition
		}
		if to == constants.RegistrantAccepted {
			if r.JenjangID == nil {
				return ErrNoJenjang
			}
			quota, accepted, err := q.JenjangQuota(*r.JenjangID)
			if err != nil {
				return err
			}
			if accepted >= int64(quota) {
				return ErrQuotaFull
			}
		}

		same := r.Status == to
		r.Status = to
		r.StatusNote = note
		switch {
		case same:
		case to == constants.RegistrantVerified:
			r.VerifiedAt = &now
		case to == constants.RegistrantAccepted, to == constants.RegistrantRejected:
			r.DecidedAt = &now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(constants.EventRegistrantStatus, r.ID, map[string]string{
		"status":  constants.RegistrantStatusLabel[to],
		"catatan": note,
	})
	zap.L().Info("status pendaftar diubah",
		zap.String("registrant_id", r.ID.String()),
		zap.String("status", to))
	return r, nil
}

func (s *Service) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	return s.Repo.Stats(ctx)
}
