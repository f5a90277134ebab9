package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/registrant_files/model"
	"ppdb_backend/internals/features/ppdb/registrant_files/repository"
	regModel "ppdb_backend/internals/features/ppdb/registrants/model"
	"ppdb_backend/internals/helpers/storage"
)

var (
	ErrNotFound     = repository.ErrNotFound
	ErrNotDraft     = errors.New("berkas hanya bisa diubah saat status draft")
	ErrInvalidKind  = errors.New("jenis dokumen tidak dikenal")
	ErrFileType     = errors.New("tipe berkas tidak diizinkan untuk dokumen ini")
	ErrTooLarge     = errors.New("ukuran berkas melebihi batas")
	ErrEmptyFile    = errors.New("berkas kosong")
	ErrNotOwner     = errors.New("berkas bukan milik Anda")
	ErrInvalidImage = storage.ErrUnsupportedImage
)

// RegistrantFinder: cukup cari registrant milik user.
type RegistrantFinder interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*regModel.Registrant, error)
}

type Service struct {
	Repo        repository.Repository
	Registrants RegistrantFinder
	Store       storage.BlobStore
	MaxBytes    int64
	Now         func() time.Time
}

func New(repo repository.Repository, regs RegistrantFinder, store storage.BlobStore, maxBytes int64) *Service {
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &Service{
		Repo:        repo,
		Registrants: regs,
		Store:       store,
		MaxBytes:    maxBytes,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func webpOptions(kind string) *storage.WebPOptions {
	if kind == constants.DocPasFoto {
		return &storage.PasFotoWebP
	}
	return &storage.DocumentWebP
}

// draftOf: registrant milik user dan masih draft.
func (s *Service) draftOf(ctx context.Context, userID uuid.UUID) (*regModel.Registrant, error) {
	r, err := s.Registrants.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if r.Status != constants.RegistrantDraft {
		return nil, ErrNotDraft
	}
	return r, nil
}

func (s *Service) Mine(ctx context.Context, userID uuid.UUID) ([]model.RegistrantFile, error) {
	r, err := s.Registrants.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Repo.List(ctx, r.ID)
}

// Upload menyimpan dokumen; kind selain "lainnya" menggantikan berkas lama.
func (s *Service) Upload(ctx context.Context, userID uuid.UUID, kind, filename string, data []byte) (*model.RegistrantFile, error) {
	if !constants.IsValidDocumentKind(kind) {
		return nil, ErrInvalidKind
	}
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(data)) > s.MaxBytes {
		return nil, ErrTooLarge
	}
	if !constants.AllowedFileForKind(kind, filename) {
		return nil, ErrFileType
	}

	r, err := s.draftOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	dir := fmt.Sprintf("registrants/%s/%s", r.ID, kind)
	st, err := storage.Upload(ctx, s.Store, dir, filename, data, webpOptions(kind))
	if err != nil {
		return nil, err
	}

	var old []model.RegistrantFile
	if kind != constants.DocLainnya {
		if old, err = s.Repo.FindKind(ctx, r.ID, kind); err != nil {
			_ = s.Store.Delete(ctx, st.Key)
			return nil, err
		}
	}
	oldIDs := make([]uuid.UUID, 0, len(old))
	for _, o := range old {
		oldIDs = append(oldIDs, o.ID)
	}

	f := &model.RegistrantFile{
		RegistrantID: r.ID,
		Kind:         kind,
		OriginalName: filename,
		URL:          st.URL,
		ObjectKey:    st.Key,
		Mime:         st.Mime,
		SizeBytes:    st.Size,
		Status:       constants.ReviewPending,
	}
	if err := s.Repo.Replace(ctx, f, oldIDs); err != nil {
		_ = s.Store.Delete(ctx, st.Key)
		return nil, err
	}

	for _, o := range old {
		if err := s.Store.Delete(ctx, o.ObjectKey); err != nil {
			zap.L().Warn("hapus objek lama gagal", zap.String("key", o.ObjectKey), zap.Error(err))
		}
	}
	return f, nil
}

// DeleteMine: hanya berkas sendiri & saat draft.
func (s *Service) DeleteMine(ctx context.Context, userID, fileID uuid.UUID) error {
	r, err := s.draftOf(ctx, userID)
	if err != nil {
		return err
	}
	f, err := s.Repo.FindByID(ctx, fileID)
	if err != nil {
		return err
	}
	if f.RegistrantID != r.ID {
		return ErrNotOwner
	}
	if err := s.Repo.Delete(ctx, f.ID); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, f.ObjectKey); err != nil {
		zap.L().Warn("hapus objek gagal", zap.String("key", f.ObjectKey), zap.Error(err))
	}
	return nil
}

func (s *Service) Review(ctx context.Context, fileID uuid.UUID, status, note string, by uuid.UUID) (*model.RegistrantFile, error) {
	return s.Repo.Review(ctx, fileID, status, note, by, s.Now())
}
