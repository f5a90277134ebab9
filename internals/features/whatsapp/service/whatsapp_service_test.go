package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppdb_backend/internals/constants"
	contactModel "ppdb_backend/internals/features/master/contacts/model"
	"ppdb_backend/internals/features/whatsapp/model"
	"ppdb_backend/internals/features/whatsapp/repository"
	helper "ppdb_backend/internals/helpers"
)

type memRepo struct {
	memLogs
	templates   []model.Template
	contacts    []contactModel.Contact
	registrants []repository.RegistrantInfo
}

func (m *memRepo) ListTemplates(context.Context, string, string, helper.Params) ([]model.Template, int64, error) {
	return m.templates, int64(len(m.templates)), nil
}
func (m *memRepo) FindTemplate(context.Context, uuid.UUID) (*model.Template, error) {
	return nil, repository.ErrNotFound
}
func (m *memRepo) CreateTemplate(context.Context, *model.Template) error { return nil }
func (m *memRepo) SaveTemplate(context.Context, *model.Template) error { return nil }
func (m *memRepo) DeleteTemplate(context.Context, uuid.UUID) error { return nil }

func (m *memRepo) TemplatesFor(_ context.Context, code string) ([]model.Template, error) {
	var out []model.Template
	for _, t := range m.templates {
		if t.Code == code && t.IsActive {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memRepo) Contacts(_ context.Context, role, gender string) ([]contactModel.Contact, error) {
	var out []contactModel.Contact
	for _, c := range m.contacts {
		if c.Role != role || !c.IsActive {
			continue
		}
		if gender != "" && c.Gender != gender && c.Gender != "" {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *memRepo) Registrant(_ context.Context, id uuid.UUID) (*repository.RegistrantInfo, error) {
	for i := range m.registrants {
		if m.registrants[i].ID == id {
			return &m.registrants[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRepo) Registrants(_ context.Context, f repository.RegistrantFilter) ([]repository.RegistrantInfo, error) {
	var out []repository.RegistrantInfo
	for _, r := range m.registrants {
		if (f.Status == "" || r.Status == f.Status) && (f.Gender == "" || r.Gender == f.Gender) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRepo) ListLogs(context.Context, repository.LogFilter, helper.Params) ([]model.DispatchLog, int64, error) {
	return m.logs, int64(len(m.logs)), nil
}

func newMemRepo() *memRepo {
	return &memRepo{
		contacts: []contactModel.Contact{
			{Name: "Ust. Hasan", Role: constants.RolePanitia, Gender: "L", Phone: "081111111111", IsActive: true},
			{Name: "Ust. Maryam", Role: constants.RolePanitia, Gender: "P", Phone: "081222222222", IsActive: true},
			{Name: "Sekretariat", Role: constants.RolePanitia, Gender: "", Phone: "081333333333", IsActive: true},
			{Name: "Ust. Nonaktif", Role: constants.RolePanitia, Gender: "P", Phone: "081444444444", IsActive: false},
			{Name: "Bu Khadijah", Role: constants.RoleBendahara, Gender: "P", Phone: "081555555555", IsActive: true},
		},
		registrants: []repository.RegistrantInfo{
			{ID: uuid.New(), RegistrationNumber: "PPDB-2026-00001", FullName: "Zainab", Gender: "P", Status: "submitted", MotherPhone: "0857 1111 2222", JenjangName: "SMP"},
			{ID: uuid.New(), RegistrationNumber: "PPDB-2026-00002", FullName: "Yusuf", Gender: "L", Status: "accepted", Phone: "085733334444"},
		},
	}
}

func TestNotifyRegisteredGenderSegmented(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, NewDispatcher(nil, 2, repo), "SMP IT Nurul Ilmi")
	zainab := repo.registrants[0]

	res, err := svc.Notify(context.Background(), constants.EventRegistrantRegistered, zainab.ID, nil)
	require.NoError(t, err)
	require.Len(t, res, 3)

	assert.Equal(t, model.AudienceCalonSiswa, res[0].Audience)
	assert.Equal(t, "6285711112222", res[0].Phone, "fallback ke nomor ibu")
	assert.Contains(t, res[0].Message, "Saudari Zainab")
	assert.Contains(t, res[0].Message, "SMP IT Nurul Ilmi")
	assert.Contains(t, res[0].Message, "PPDB-2026-00001")

	names := []string{res[1].RecipientName, res[2].RecipientName}
	assert.ElementsMatch(t, []string{"Ust. Maryam", "Sekretariat"}, names)
	for _, r := range res[1:] {
		assert.Contains(t, r.Message, "Jenjang: SMP")
		assert.Contains(t, r.Message, "Jalur: -")
		assert.Equal(t, zainab.ID, *r.RegistrantID)
	}
	assert.Contains(t, res[1].Message+res[2].Message, "Ustadzah Ust. Maryam")
	assert.Contains(t, res[1].Message+res[2].Message, "Bapak/Ibu Sekretariat")
	assert.Len(t, repo.logs, 3)
}

func TestNotifyUsesStoredTemplateAndVars(t *testing.T) {
	repo := newMemRepo()
	repo.templates = []model.Template{{
		Code: constants.EventPaymentRejected, Audience: model.AudienceCalonSiswa, Gender: "L",
		Body: "{{sapaan}} {{nama}}, {{biaya}} ({{nominal}}) ditolak: {{catatan}}", IsActive: true,
	}}
	svc := New(repo, NewDispatcher(nil, 1, nil), "Sekolah")
	yusuf := repo.registrants[1]

	res, err := svc.Notify(context.Background(), constants.EventPaymentRejected, yusuf.ID, map[string]string{
		"biaya": "Seragam", "nominal": "Rp 450.000", "catatan": "bukti buram",
	})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "Saudara Yusuf, Seragam (Rp 450.000) ditolak: bukti buram", res[0].Message)
}

func TestNotifyErrors(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, NewDispatcher(nil, 1, nil), "Sekolah")

	_, err := svc.Notify(context.Background(), "tidak_ada", repo.registrants[0].ID, nil)
	assert.ErrorIs(t, err, ErrUnknownEvent)

	_, err = svc.Notify(context.Background(), constants.EventRegistrantStatus, uuid.New(), nil)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestNotifyAsyncWritesLogs(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, NewDispatcher(nil, 1, repo), "Sekolah")

	svc.NotifyAsync(constants.EventPaymentSubmitted, repo.registrants[0].ID, map[string]string{"biaya": "Formulir", "nominal": "Rp 150.000"})
	svc.Wait()

	require.Len(t, repo.logs, 1)
	assert.Equal(t, "Bu Khadijah", repo.logs[0].RecipientName)
	assert.Equal(t, constants.EventPaymentSubmitted, repo.logs[0].Event)
	assert.Contains(t, repo.logs[0].Message, "Rp 150.000")
}

func TestBroadcast(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, NewDispatcher(nil, 2, repo), "Sekolah")

	out, err := svc.Broadcast(context.Background(), BroadcastInput{
		Audience: model.AudienceCalonSiswa,
		Body:     "{{sapaan}} {{nama}} ({{status}}) - {{acara}}",
		Filter:   repository.RegistrantFilter{Status: "accepted"},
		Vars:     map[string]string{"acara": "daftar ulang"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.Total)
	assert.Equal(t, "Saudara Yusuf (Diterima) - daftar ulang", out.Results[0].Message)
	assert.Equal(t, map[string]int{model.StatusLink: 1}, out.Summary)

	out, err = svc.Broadcast(context.Background(), BroadcastInput{
		Audience: model.AudiencePanitia,
		Body:     "rapat",
		Filter:   repository.RegistrantFilter{Gender: "L"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)

	_, err = svc.Broadcast(context.Background(), BroadcastInput{Audience: "ortu", Body: "x"})
	assert.ErrorIs(t, err, ErrInvalidAudience)
	_, err = svc.Broadcast(context.Background(), BroadcastInput{Audience: model.AudiencePanitia})
	assert.ErrorIs(t, err, ErrMessageRequired)
	_, err = svc.Broadcast(context.Background(), BroadcastInput{
		Audience: model.AudienceCalonSiswa, Body: "x", Filter: repository.RegistrantFilter{Status: "rejected"},
	})
	assert.ErrorIs(t, err, ErrNoRecipients)
}

func TestPreview(t *testing.T) {
	repo := newMemRepo()
	svc := New(repo, NewDispatcher(nil, 1, nil), "Sekolah")
	id := repo.registrants[0].ID

	p, err := svc.Preview(context.Background(), PreviewInput{
		TemplateCode: constants.EventPaymentRejected,
		Audience:     model.AudienceCalonSiswa,
		RegistrantID: &id,
		Vars:         map[string]string{"biaya": "Formulir"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Saudari", p.Sapaan)
	assert.Contains(t, p.Message, "Formulir")
	assert.Equal(t, []string{"nominal", "catatan"}, p.Unresolved)
	assert.Contains(t, p.URL, "https://wa.me/6285711112222?text=")

	_, err = svc.Preview(context.Background(), PreviewInput{Audience: model.AudiencePanitia})
	assert.ErrorIs(t, err, ErrMessageRequired)

	_, err = svc.Preview(context.Background(), PreviewInput{Audience: model.AudiencePanitia, TemplateCode: "tidak_ada"})
	assert.ErrorIs(t, err, ErrEmptyTemplate)
}
