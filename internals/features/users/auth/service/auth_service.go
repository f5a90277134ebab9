package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/users/auth/dto"
	"ppdb_backend/internals/features/users/auth/model"
	"ppdb_backend/internals/features/users/auth/repository"
	helper "ppdb_backend/internals/helpers"
)

/* ==========================
   Errors
========================== */

var (
	ErrEmailTaken         = errors.New("Email sudah terdaftar")
	ErrUsernameTaken      = errors.New("Username sudah dipakai")
	ErrInvalidCredentials = errors.New("Email/username atau password salah")
	ErrInactive           = errors.New("Akun Anda telah dinonaktifkan. Hubungi admin.")
	ErrWeakPassword       = errors.New("Password minimal 8 karakter dan harus mengandung huruf dan angka")
	ErrWrongPassword      = errors.New("Password lama tidak sesuai")
	ErrGoogleDisabled     = errors.New("Login Google belum dikonfigurasi")
	ErrInvalidGoogleToken = errors.New("Google ID token tidak valid")
	ErrNoChanges          = errors.New("Tidak ada perubahan")
)

/* ==========================
   Dependencies
========================== */

// Onboarder membuat user calon siswa beserta data pendaftarnya dalam satu transaksi.
type Onboarder interface {
	CreateUserWithRegistrant(ctx context.Context, u *model.User, jalurID, jenjangID *uuid.UUID) (registrantID uuid.UUID, registrationNumber string, err error)
}

type Notifier interface {
	NotifyAsync(event string, registrantID uuid.UUID, vars map[string]string)
}

type Config struct {
	Secret         string
	AccessTTL      time.Duration
	GoogleClientID string
}

type Service struct {
	Repo    repository.Repository
	Onboard Onboarder
	Notify  Notifier
	Google  GoogleVerifier
	Cfg     Config
	Now     func() time.Time
}

func New(repo repository.Repository, onboard Onboarder, notify Notifier, cfg Config) *Service {
	return &Service{
		Repo:    repo,
		Onboard: onboard,
		Notify:  notify,
		Google:  NewGoogleVerifier(),
		Cfg:     cfg,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

/* ==========================
   Small Helpers
========================== */

var (
	reLetter = regexp.MustCompile(`[A-Za-z]`)
	reDigit  = regexp.MustCompile(`[0-9]`)
)

func ValidatePassword(p string) error {
	if len(p) < 8 || !reLetter.MatchString(p) || !reDigit.MatchString(p) {
		return ErrWeakPassword
	}
	return nil
}

func hashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	return string(b), err
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

func strptr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// uniqueUsername: pakai kandidat bila kosong dari email, tambah suffix acak bila bentrok.
func (s *Service) uniqueUsername(ctx context.Context, candidate, email string) (string, error) {
	base := strings.TrimSpace(candidate)
	if base == "" {
		local := email
		if i := strings.Index(email, "@"); i > 0 {
			local = email[:i]
		}
		base = strings.ReplaceAll(helper.Slugify(local, 40), "-", "_")
	}
	if len(base) < 3 {
		base += "_ppdb"
	}
	name := base
	for i := 0; i < 5; i++ {
		taken, err := s.Repo.IsUsernameTaken(ctx, name)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
		if candidate != "" {
			return "", ErrUsernameTaken
		}
		name = base + "_" + randomSuffix(2)
	}
	return base + "_" + randomSuffix(4), nil
}

func (s *Service) issue(u model.User) (*dto.TokenResponse, error) {
	tok, exp, err := IssueAccessToken(u, s.Cfg.Secret, s.Cfg.AccessTTL, s.Now())
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: tok,
		TokenType:   "Bearer",
		ExpiresAt:   exp,
		User:        dto.FromUser(u),
	}, nil
}

/* ==========================
   REGISTER
========================== */

func (s *Service) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if _, err := s.Repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	userName, err := s.uniqueUsername(ctx, req.UserName, req.Email)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		UserName: userName,
		FullName: strings.TrimSpace(req.FullName),
		Email:    req.Email,
		Phone:    strptr(req.Phone),
		Password: hash,
		Role:     constants.RoleCalonSiswa,
		Gender:   req.Gender,
		IsActive: true,
	}
	regID, regNumber, err := s.Onboard.CreateUserWithRegistrant(ctx, u, req.JalurID, req.JenjangID)
	if err != nil {
		return nil, err
	}
	zap.L().Info("✅ pendaftar baru", zap.String("user_id", u.ID.String()), zap.String("no", regNumber))

	if s.Notify != nil {
		s.Notify.NotifyAsync(constants.EventRegistrantRegistered, regID, nil)
	}

	resp, err := s.issue(*u)
	if err != nil {
		return nil, err
	}
	resp.RegistrantID = &regID
	resp.RegistrationNumber = regNumber
	return resp, nil
}

/* ==========================
   LOGIN
========================== */

func (s *Service) Login(ctx context.Context, req dto.LoginRequest) (*dto.TokenResponse, error) {
	u, err := s.Repo.FindByIdentifier(ctx, req.Identifier)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, ErrInactive
	}
	now := s.Now()
	if err := s.Repo.Update(ctx, u.ID, map[string]any{"last_login_at": now}); err != nil {
		zap.L().Warn("gagal update last_login_at", zap.Error(err))
	}
	u.LastLoginAt = &now
	return s.issue(*u)
}

func (s *Service) LoginGoogle(ctx context.Context, idToken string) (*dto.TokenResponse, error) {
	if s.Cfg.GoogleClientID == "" || s.Google == nil {
		return nil, ErrGoogleDisabled
	}
	ident, err := s.Google.Verify(idToken, s.Cfg.GoogleClientID)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}

	u, err := s.Repo.FindByGoogleID(ctx, ident.Sub)
	if errors.Is(err, repository.ErrNotFound) {
		u, err = s.linkOrCreateGoogleUser(ctx, ident)
	}
	if err != nil {
		return nil, err
	}
	if !u.IsActive {
		return nil, ErrInactive
	}
	return s.issue(*u)
}

func (s *Service) linkOrCreateGoogleUser(ctx context.Context, ident *GoogleIdentity) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(ident.Email))
	existing, err := s.Repo.FindByEmail(ctx, email)
	if err == nil {
		if err := s.Repo.Update(ctx, existing.ID, map[string]any{"google_id": ident.Sub}); err != nil {
			return nil, err
		}
		existing.GoogleID = &ident.Sub
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	userName, err := s.uniqueUsername(ctx, "", email)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(randomSuffix(16))
	if err != nil {
		return nil, err
	}
	googleID := ident.Sub
	u := &model.User{
		UserName: userName,
		FullName: ident.Name,
		Email:    email,
		Password: hash,
		GoogleID: &googleID,
		Role:     constants.RoleCalonSiswa,
		IsActive: true,
	}
	regID, _, err := s.Onboard.CreateUserWithRegistrant(ctx, u, nil, nil)
	if err != nil {
		return nil, err
	}
	if s.Notify != nil {
		s.Notify.NotifyAsync(constants.EventRegistrantRegistered, regID, nil)
	}
	return u, nil
}

/* ==========================
   LOGOUT
========================== */

func (s *Service) Logout(ctx context.Context, rawToken string) error {
	if strings.TrimSpace(rawToken) == "" {
		return nil
	}
	exp := TokenExpiry(rawToken, s.Cfg.AccessTTL)
	return s.Repo.BlacklistToken(ctx, rawToken, exp)
}

// CleanupBlacklist: hapus token yang kedaluwarsa lebih dari ttlDays hari.
func (s *Service) CleanupBlacklist(ctx context.Context, ttlDays int) (int64, error) {
	before := s.Now().Add(-time.Duration(ttlDays) * 24 * time.Hour)
	return s.Repo.CleanupExpiredBlacklist(ctx, before)
}

/* ==========================
   ME & PASSWORD
========================== */

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	return s.Repo.FindByID(ctx, userID)
}

func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	u, err := s.Repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(req.CurrentPassword)) != nil {
		return ErrWrongPassword
	}
	return s.setPassword(ctx, userID, req.NewPassword)
}

// ResetPassword dipakai admin untuk mengganti password user lain.
func (s *Service) ResetPassword(ctx context.Context, userID uuid.UUID, newPassword string) error {
	if _, err := s.Repo.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.setPassword(ctx, userID, newPassword)
}

func (s *Service) setPassword(ctx context.Context, userID uuid.UUID, p string) error {
	if err := ValidatePassword(p); err != nil {
		return err
	}
	hash, err := hashPassword(p)
	if err != nil {
		return err
	}
	return s.Repo.Update(ctx, userID, map[string]any{"password": hash})
}

/* ==========================
   ADMIN: USER MANAGEMENT
========================== */

func (s *Service) CreateStaff(ctx context.Context, req dto.CreateStaffRequest) (*model.User, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if _, err := s.Repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	userName, err := s.uniqueUsername(ctx, req.UserName, req.Email)
	if err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	u := &model.User{
		UserName: userName,
		FullName: strings.TrimSpace(req.FullName),
		Email:    req.Email,
		Phone:    strptr(req.Phone),
		Password: hash,
		Role:     req.Role,
		Gender:   req.Gender,
		IsActive: true,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req dto.UpdateUserRequest) (*model.User, error) {
	fields := req.ToUpdates()
	if len(fields) == 0 {
		return nil, ErrNoChanges
	}
	if err := s.Repo.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.Repo.FindByID(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, f repository.ListFilter, p helper.Params) ([]model.User, int64, error) {
	return s.Repo.List(ctx, f, p)
}
