package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppdb_backend/internals/features/users/auth/dto"
	"ppdb_backend/internals/features/users/auth/model"
	"ppdb_backend/internals/features/users/auth/repository"
	helper "ppdb_backend/internals/helpers"
)

type memRepo struct {
	mu        sync.Mutex
	users     map[uuid.UUID]*model.User
	blacklist map[string]time.Time
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[uuid.UUID]*model.User{}, blacklist: map[string]time.Time{}}
}

func (m *memRepo) find(pred func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if pred(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) FindByIdentifier(_ context.Context, id string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return strings.EqualFold(u.Email, id) || u.UserName == id })
}
func (m *memRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.ID == id })
}
func (m *memRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}
func (m *memRepo) FindByGoogleID(_ context.Context, gid string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.GoogleID != nil && *u.GoogleID == gid })
}
func (m *memRepo) IsUsernameTaken(_ context.Context, name string) (bool, error) {
	_, err := m.find(func(u *model.User) bool { return u.UserName == name })
	return err == nil, nil
}
func (m *memRepo) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}
func (m *memRepo) Update(_ context.Context, id uuid.UUID, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	for k, v := range fields {
		switch k {
		case "password":
			u.Password = v.(string)
		case "google_id":
			s := v.(string)
			u.GoogleID = &s
		case "is_active":
			u.IsActive = v.(bool)
		case "full_name":
			u.FullName = v.(string)
		case "role":
			u.Role = v.(string)
		}
	}
	return nil
}
func (m *memRepo) List(context.Context, repository.ListFilter, helper.Params) ([]model.User, int64, error) {
	return nil, 0, nil
}
func (m *memRepo) BlacklistToken(_ context.Context, tok string, exp time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blacklist[tok] = exp
	return nil
}
func (m *memRepo) CleanupExpiredBlacklist(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, exp := range m.blacklist {
		if exp.Before(before) {
			delete(m.blacklist, k)
			n++
		}
	}
	return n, nil
}

type fakeOnboarder struct {
	repo  *memRepo
	calls int
}

func (f *fakeOnboarder) CreateUserWithRegistrant(ctx context.Context, u *model.User, _, _ *uuid.UUID) (uuid.UUID, string, error) {
	f.calls++
	if err := f.repo.Create(ctx, u); err != nil {
		return uuid.Nil, "", err
	}
	return uuid.New(), "PPDB-2026-00001", nil
}

type recNotifier struct {
	mu     sync.Mutex
	events []string
}

func (r *recNotifier) NotifyAsync(event string, _ uuid.UUID, _ map[string]string) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

type fakeGoogle struct {
	ident *GoogleIdentity
	err   error
}

func (f fakeGoogle) Verify(string, string) (*GoogleIdentity, error) { return f.ident, f.err }

func newTestService() (*Service, *memRepo, *recNotifier) {
	repo := newMemRepo()
	n := &recNotifier{}
	svc := New(repo, &fakeOnboarder{repo: repo}, n, Config{Secret: "s3cret", AccessTTL: time.Hour, GoogleClientID: "cid"})
	return svc, repo, n
}

func registerReq() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:    "Aisyah@Example.com",
		Password: "rahasia123",
		FullName: "Aisyah Putri",
		Phone:    "081234567890",
		Gender:   "P",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, n := newTestService()
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	assert.Equal(t, "aisyah@example.com", resp.User.Email)
	assert.Equal(t, "aisyah", resp.User.UserName)
	assert.Equal(t, "calon_siswa", resp.User.Role)
	assert.Equal(t, "PPDB-2026-00001", resp.RegistrationNumber)
	assert.Equal(t, []string{"registrant_registered"}, n.events)

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (any, error) { return []byte("s3cret"), nil })
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims["id"])
	assert.Equal(t, "calon_siswa", claims["role"])

	_, err = svc.Register(ctx, registerReq())
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(ctx, dto.LoginRequest{Identifier: "aisyah", Password: "rahasia123"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	require.NotNil(t, login.User.LastLoginAt)

	_, err = svc.Login(ctx, dto.LoginRequest{Identifier: "aisyah@example.com", Password: "salah12345"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, dto.LoginRequest{Identifier: "nobody", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc, _, _ := newTestService()
	req := registerReq()
	req.Password = "abcdefgh"
	_, err := svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestRegisterUsernameCollision(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	req := registerReq()
	req.Email = "aisyah@other.id"
	resp, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(resp.User.UserName, "aisyah_"), resp.User.UserName)

	req.Email = "third@other.id"
	req.UserName = "aisyah"
	_, err = svc.Register(ctx, req)
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLoginInactive(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	resp, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)
	require.NoError(t, repo.Update(ctx, resp.User.ID, map[string]any{"is_active": false}))

	_, err = svc.Login(ctx, dto.LoginRequest{Identifier: "aisyah", Password: "rahasia123"})
	assert.ErrorIs(t, err, ErrInactive)
}

func TestChangeAndResetPassword(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	resp, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, resp.User.ID, dto.ChangePasswordRequest{CurrentPassword: "keliru123", NewPassword: "baru12345"})
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, resp.User.ID, dto.ChangePasswordRequest{CurrentPassword: "rahasia123", NewPassword: "baru12345"}))
	_, err = svc.Login(ctx, dto.LoginRequest{Identifier: "aisyah", Password: "baru12345"})
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, resp.User.ID, "reset9999"))
	_, err = svc.Login(ctx, dto.LoginRequest{Identifier: "aisyah", Password: "reset9999"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ResetPassword(ctx, uuid.New(), "reset9999"), repository.ErrNotFound)
}

func TestLogoutBlacklistsUntilExpiry(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	resp, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.AccessToken))
	exp, ok := repo.blacklist[resp.AccessToken]
	require.True(t, ok)
	assert.WithinDuration(t, resp.ExpiresAt, exp, time.Second)

	svc.Now = func() time.Time { return resp.ExpiresAt.Add(8 * 24 * time.Hour) }
	n, err := svc.CleanupBlacklist(ctx, 7)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLoginGoogle(t *testing.T) {
	svc, repo, n := newTestService()
	ctx := context.Background()

	svc.Google = fakeGoogle{err: errors.New("bad")}
	_, err := svc.LoginGoogle(ctx, "tok")
	assert.ErrorIs(t, err, ErrInvalidGoogleToken)

	svc.Google = fakeGoogle{ident: &GoogleIdentity{Sub: "g-1", Email: "Budi@Gmail.com", Name: "Budi"}}
	resp, err := svc.LoginGoogle(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "budi@gmail.com", resp.User.Email)
	assert.Equal(t, "calon_siswa", resp.User.Role)
	assert.Contains(t, n.events, "registrant_registered")

	again, err := svc.LoginGoogle(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, again.User.ID)
	assert.Len(t, repo.users, 1)

	svc.Cfg.GoogleClientID = ""
	_, err = svc.LoginGoogle(ctx, "tok")
	assert.ErrorIs(t, err, ErrGoogleDisabled)
}

func TestLoginGoogleLinksExistingEmail(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	reg, err := svc.Register(ctx, registerReq())
	require.NoError(t, err)

	svc.Google = fakeGoogle{ident: &GoogleIdentity{Sub: "g-2", Email: "aisyah@example.com"}}
	resp, err := svc.LoginGoogle(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, resp.User.ID)
	require.NotNil(t, repo.users[reg.User.ID].GoogleID)
	assert.Equal(t, "g-2", *repo.users[reg.User.ID].GoogleID)
}

func TestCreateStaff(t *testing.T) {
	svc, _, _ := newTestService()
	u, err := svc.CreateStaff(context.Background(), dto.CreateStaffRequest{
		Email: "bendahara@sekolah.id", Password: "kas12345", FullName: "Pak Kas", Role: "bendahara", Gender: "L",
	})
	require.NoError(t, err)
	assert.Equal(t, "bendahara", u.Role)
	assert.Equal(t, "bendahara", u.UserName)

	_, err = svc.UpdateUser(context.Background(), u.ID, dto.UpdateUserRequest{})
	assert.ErrorIs(t, err, ErrNoChanges)
}

func TestTokenExpiryFallback(t *testing.T) {
	got := TokenExpiry("not-a-jwt", time.Hour)
	assert.WithinDuration(t, time.Now().Add(time.Hour), got, 5*time.Second)
}
