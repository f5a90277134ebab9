package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppdb_backend/internals/constants"
	jenjangModel "ppdb_backend/internals/features/master/jenjang/model"
	"ppdb_backend/internals/features/ppdb/registrants/dto"
	"ppdb_backend/internals/features/ppdb/registrants/model"
	"ppdb_backend/internals/features/ppdb/registrants/repository"
	fileModel "ppdb_backend/internals/features/ppdb/registrant_files/model"
	helper "ppdb_backend/internals/helpers"
)

/* ========== fakes ========== */

type memRepo struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*model.Registrant
	files    map[uuid.UUID][]fileModel.RegistrantFile
	jenjang  map[uuid.UUID]*jenjangModel.Jenjang
	accepted map[uuid.UUID]int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		rows:     map[uuid.UUID]*model.Registrant{},
		files:    map[uuid.UUID][]fileModel.RegistrantFile{},
		jenjang:  map[uuid.UUID]*jenjangModel.Jenjang{},
		accepted: map[uuid.UUID]int64{},
	}
}

func (m *memRepo) add(r model.Registrant) *model.Registrant {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.rows[r.ID] = &r
	return &r
}

func (m *memRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Registrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRepo) FindByUserID(_ context.Context, userID uuid.UUID) (*model.Registrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) Save(_ context.Context, r *model.Registrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rows[r.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memRepo) List(context.Context, dto.ListFilter, helper.Params) ([]dto.RegistrantListItem, int64, error) {
	return nil, 0, nil
}

type fakeQuota struct{ m *memRepo }

func (q fakeQuota) JenjangQuota(id uuid.UUID) (int, int64, error) {
	j, ok := q.m.jenjang[id]
	if !ok {
		return 0, 0, errors.New("jenjang hilang")
	}
	return j.Quota, q.m.accepted[id], nil
}

func (m *memRepo) WithLocked(_ context.Context, id uuid.UUID, fn func(*model.Registrant, repository.QuotaReader) error) (*model.Registrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	if err := fn(&cp, fakeQuota{m: m}); err != nil {
		return nil, err
	}
	m.rows[id] = &cp
	out := cp
	return &out, nil
}

func (m *memRepo) Files(_ context.Context, id uuid.UUID) ([]fileModel.RegistrantFile, error) {
	return m.files[id], nil
}

func (m *memRepo) FindJenjang(_ context.Context, id uuid.UUID) (*jenjangModel.Jenjang, error) {
	if j, ok := m.jenjang[id]; ok {
		return j, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) ActiveExists(_ context.Context, table string, id uuid.UUID) (bool, error) {
	if table == "jenjang" {
		_, ok := m.jenjang[id]
		return ok, nil
	}
	return true, nil
}

func (m *memRepo) Names(context.Context, *uuid.UUID, *uuid.UUID) (string, string) {
	return "Reguler", "SMP"
}

func (m *memRepo) Stats(context.Context) (*dto.DashboardStats, error) {
	return &dto.DashboardStats{}, nil
}

type event struct {
	name string
	id   uuid.UUID
	vars map[string]string
}

type recNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recNotifier) NotifyAsync(name string, id uuid.UUID, vars map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{name, id, vars})
}

/* ========== helpers ========== */

func completeRegistrant(jalur, jenjang uuid.UUID) model.Registrant {
	bd := time.Date(2012, 5, 1, 0, 0, 0, 0, time.UTC)
	return model.Registrant{
		UserID:     uuid.New(),
		Status:     constants.RegistrantDraft,
		FullName:   "Aisyah Putri",
		Gender:     constants.GenderFemale,
		BirthPlace: "Bandung",
		BirthDate:  &bd,
		Address:    "Jl. Merdeka 1",
		Phone:      "081234567890",
		JalurID:    &jalur,
		JenjangID:  &jenjang,
		MotherName: "Siti",
	}
}

func newSvc(repo *memRepo) (*Service, *recNotifier) {
	n := &recNotifier{}
	s := New(repo, n)
	s.Now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	return s, n
}

/* ========== tests ========== */

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{constants.RegistrantSubmitted, constants.RegistrantVerified, true},
		{constants.RegistrantSubmitted, constants.RegistrantDraft, true},
		{constants.RegistrantVerified, constants.RegistrantAccepted, true},
		{constants.RegistrantVerified, constants.RegistrantRejected, true},
		{constants.RegistrantDraft, constants.RegistrantRejected, true},
		{constants.RegistrantAccepted, constants.RegistrantRejected, true},
		{constants.RegistrantDraft, constants.RegistrantAccepted, false},
		{constants.RegistrantSubmitted, constants.RegistrantAccepted, false},
		{constants.RegistrantRejected, constants.RegistrantRejected, true},
		{constants.RegistrantRejected, constants.RegistrantDraft, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCheckCompleteness(t *testing.T) {
	r := &model.Registrant{FullName: "Budi", Gender: "L"}
	c := CheckCompleteness(r, []string{constants.DocPasFoto}, nil)

	assert.False(t, c.Complete)
	assert.ElementsMatch(t, []string{"birth_place", "birth_date", "address", "phone", "jalur_id", "jenjang_id", "parent_name"}, c.MissingFields)
	assert.Equal(t, []string{constants.DocAktaKelahiran, constants.DocKartuKeluarga}, c.MissingDocuments)

	full := completeRegistrant(uuid.New(), uuid.New())
	ok := CheckCompleteness(&full, []string{"ijazah"}, []string{"ijazah"})
	assert.True(t, ok.Complete)
	assert.Empty(t, ok.MissingFields)
	assert.Empty(t, ok.MissingDocuments)
}

func TestUpdateMineOnlyDraft(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newSvc(repo)
	r := repo.add(model.Registrant{UserID: uuid.New(), Status: constants.RegistrantDraft})

	name := "Ahmad Fauzi"
	got, err := svc.UpdateMine(context.Background(), r.UserID, dto.UpdateBiodataRequest{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, name, got.FullName)

	_, err = svc.UpdateMine(context.Background(), r.UserID, dto.UpdateBiodataRequest{})
	assert.ErrorIs(t, err, ErrNoChanges)

	repo.rows[r.ID].Status = constants.RegistrantSubmitted
	_, err = svc.UpdateMine(context.Background(), r.UserID, dto.UpdateBiodataRequest{FullName: &name})
	assert.ErrorIs(t, err, ErrNotDraft)
}

func TestUpdateMineRejectsUnknownJenjang(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newSvc(repo)
	r := repo.add(model.Registrant{UserID: uuid.New(), Status: constants.RegistrantDraft})

	id := uuid.New()
	_, err := svc.UpdateMine(context.Background(), r.UserID, dto.UpdateBiodataRequest{JenjangID: &id})
	assert.ErrorIs(t, err, ErrInvalidJenjang)
}

func TestSubmitIncompleteThenComplete(t *testing.T) {
	repo := newMemRepo()
	svc, notif := newSvc(repo)
	jenjangID := uuid.New()
	repo.jenjang[jenjangID] = &jenjangModel.Jenjang{ID: jenjangID, Quota: 10, RequiredDocuments: []string{constants.DocPasFoto}}

	r := repo.add(completeRegistrant(uuid.New(), jenjangID))

	_, err := svc.Submit(context.Background(), r.UserID)
	var inc *IncompleteError
	require.ErrorAs(t, err, &inc)
	assert.Equal(t, []string{constants.DocPasFoto}, inc.Completeness.MissingDocuments)

	// berkas ditolak tidak dihitung
	repo.files[r.ID] = []fileModel.RegistrantFile{{Kind: constants.DocPasFoto, Status: constants.ReviewRejected}}
	_, err = svc.Submit(context.Background(), r.UserID)
	require.ErrorAs(t, err, &inc)

	repo.files[r.ID] = []fileModel.RegistrantFile{{Kind: constants.DocPasFoto, Status: constants.ReviewPending}}
	got, err := svc.Submit(context.Background(), r.UserID)
	require.NoError(t, err)
	assert.Equal(t, constants.RegistrantSubmitted, got.Status)
	require.NotNil(t, got.SubmittedAt)

	require.Len(t, notif.events, 1)
	assert.Equal(t, constants.EventRegistrantSubmitted, notif.events[0].name)

	_, err = svc.Submit(context.Background(), r.UserID)
	assert.ErrorIs(t, err, ErrNotDraft)
}

func TestChangeStatusQuota(t *testing.T) {
	repo := newMemRepo()
	svc, notif := newSvc(repo)
	jenjangID := uuid.New()
	repo.jenjang[jenjangID] = &jenjangModel.Jenjang{ID: jenjangID, Quota: 2}

	reg := completeRegistrant(uuid.New(), jenjangID)
	reg.Status = constants.RegistrantVerified
	r := repo.add(reg)

	repo.accepted[jenjangID] = 2
	_, err := svc.ChangeStatus(context.Background(), r.ID, constants.RegistrantAccepted, "")
	assert.ErrorIs(t, err, ErrQuotaFull)
	assert.Equal(t, constants.RegistrantVerified, repo.rows[r.ID].Status)

	repo.accepted[jenjangID] = 1
	got, err := svc.ChangeStatus(context.Background(), r.ID, constants.RegistrantAccepted, "Selamat")
	require.NoError(t, err)
	assert.Equal(t, constants.RegistrantAccepted, got.Status)
	assert.Equal(t, "Selamat", got.StatusNote)
	assert.NotNil(t, got.DecidedAt)

	require.Len(t, notif.events, 1)
	assert.Equal(t, constants.EventRegistrantStatus, notif.events[0].name)
	assert.Equal(t, constants.RegistrantStatusLabel[constants.RegistrantAccepted], notif.events[0].vars["status"])
}

func TestChangeStatusInvalid(t *testing.T) {
	repo := newMemRepo()
	svc, notif := newSvc(repo)
	r := repo.add(model.Registrant{UserID: uuid.New(), Status: constants.RegistrantDraft})

	_, err := svc.ChangeStatus(context.Background(), r.ID, constants.RegistrantVerified, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, notif.events)

	_, err = svc.ChangeStatus(context.Background(), uuid.New(), constants.RegistrantRejected, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestChangeStatusReturnToDraft(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newSvc(repo)
	r := repo.add(model.Registrant{UserID: uuid.New(), Status: constants.RegistrantSubmitted})

	got, err := svc.ChangeStatus(context.Background(), r.ID, constants.RegistrantDraft, "Foto buram")
	require.NoError(t, err)
	assert.Equal(t, constants.RegistrantDraft, got.Status)
	assert.Equal(t, "Foto buram", got.StatusNote)
}

func TestChangeStatusRejectedNoteUpdate(t *testing.T) {
	repo := newMemRepo()
	svc, notif := newSvc(repo)
	decided := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	r := repo.add(model.Registrant{UserID: uuid.New(), Status: constants.RegistrantRejected, StatusNote: "Berkas palsu", DecidedAt: &decided})

	got, err := svc.ChangeStatus(context.Background(), r.ID, constants.RegistrantRejected, "Akta kelahiran tidak terbaca")
	require.NoError(t, err)
	assert.Equal(t, constants.RegistrantRejected, got.Status)
	assert.Equal(t, "Akta kelahiran tidak terbaca", got.StatusNote)
	require.NotNil(t, got.DecidedAt)
	assert.True(t, decided.Equal(*got.DecidedAt))
	require.Len(t, notif.events, 1)
	assert.Equal(t, "Akta kelahiran tidak terbaca", notif.events[0].vars["catatan"])

	_, err = svc.ChangeStatus(context.Background(), r.ID, constants.RegistrantDraft, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

type fakeSummary struct{}

func (fakeSummary) SummaryFor(context.Context, *model.Registrant) (any, error) {
	return map[string]int{"outstanding": 0}, nil
}

func TestDetail(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newSvc(repo)
	svc.Payments = fakeSummary{}
	r := repo.add(model.Registrant{UserID: uuid.New(), Status: constants.RegistrantDraft, FullName: "X"})
	repo.files[r.ID] = []fileModel.RegistrantFile{{Kind: constants.DocPasFoto}}

	d, err := svc.Detail(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, "Reguler", d.JalurName)
	assert.Len(t, d.Files, 1)
	assert.False(t, d.Missing.Complete)
	assert.NotNil(t, d.Payments)
}
