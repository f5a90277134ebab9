package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppdb_backend/internals/constants"
	biayaModel "ppdb_backend/internals/features/master/biaya/model"
	"ppdb_backend/internals/features/ppdb/payments/model"
	"ppdb_backend/internals/features/ppdb/payments/repository"
	regModel "ppdb_backend/internals/features/ppdb/registrants/model"
	regRepo "ppdb_backend/internals/features/ppdb/registrants/repository"
	helper "ppdb_backend/internals/helpers"
	"ppdb_backend/internals/helpers/storage"
)

/* ========== fakes ========== */

type memPayments struct {
	mu       sync.Mutex
	biaya    []biayaModel.Biaya
	payments map[uuid.UUID]*model.Payment
	events   map[uuid.UUID]*model.PaymentGatewayEvent
}

func newMemPayments(b ...biayaModel.Biaya) *memPayments {
	return &memPayments{biaya: b, payments: map[uuid.UUID]*model.Payment{}, events: map[uuid.UUID]*model.PaymentGatewayEvent{}}
}

func (m *memPayments) ActiveBiaya(context.Context) ([]biayaModel.Biaya, error) { return m.biaya, nil }

func (m *memPayments) FindBiaya(_ context.Context, id uuid.UUID) (*biayaModel.Biaya, error) {
	for _, b := range m.biaya {
		if b.ID == id {
			return &b, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPayments) ForRegistrant(_ context.Context, rid uuid.UUID) ([]model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Payment
	for _, p := range m.payments {
		if p.RegistrantID == rid {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPayments) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memPayments) FindByExternalID(_ context.Context, ext string) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.ExternalID != nil && *p.ExternalID == ext {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPayments) Create(_ context.Context, p *model.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *memPayments) List(context.Context, repository.ListFilter, helper.Params) ([]repository.PaymentListItem, int64, error) {
	return nil, 0, nil
}

func (m *memPayments) WithLocked(_ context.Context, id uuid.UUID, fn func(*model.Payment) error) (*model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	if err := fn(&cp); err != nil {
		return nil, err
	}
	// uq_payments_open: satu pembayaran non-ditolak per (registrant, biaya)
	if cp.Status != constants.ReviewRejected {
		for oid, o := range m.payments {
			if oid != id && o.RegistrantID == cp.RegistrantID && o.BiayaID == cp.BiayaID && o.Status != constants.ReviewRejected {
				return nil, &pgconn.PgError{Code: "23505", ConstraintName: "uq_payments_open"}
			}
		}
	}
	m.payments[id] = &cp
	out := cp
	return &out, nil
}

func (m *memPayments) LogEvent(_ context.Context, ev *model.PaymentGatewayEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev.ID = uuid.New()
	cp := *ev
	m.events[ev.ID] = &cp
	return nil
}

func (m *memPayments) FinishEvent(_ context.Context, id uuid.UUID, status, msg string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ev, ok := m.events[id]; ok {
		ev.Status, ev.Error, ev.ProcessedAt = status, msg, &at
	}
	return nil
}

func (m *memPayments) ExpireGateway(_ context.Context, before time.Time, note string) ([]model.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Payment
	for _, p := range m.payments {
		if p.Method == constants.PaymentGateway && p.Status == constants.ReviewPending && p.CreatedAt.Before(before) {
			p.Status, p.AdminNote = constants.ReviewRejected, note
			out = append(out, *p)
		}
	}
	return out, nil
}

type regs struct{ r *regModel.Registrant }

func (f regs) FindByID(_ context.Context, id uuid.UUID) (*regModel.Registrant, error) {
	if f.r.ID != id {
		return nil, regRepo.ErrNotFound
	}
	return f.r, nil
}

func (f regs) FindByUserID(_ context.Context, id uuid.UUID) (*regModel.Registrant, error) {
	if f.r.UserID != id {
		return nil, regRepo.ErrNotFound
	}
	return f.r, nil
}

type fakeGateway struct {
	last CheckoutRequest
	err  error
}

func (g *fakeGateway) CreateTransaction(_ context.Context, r CheckoutRequest) (string, string, error) {
	g.last = r
	if g.err != nil {
		return "", "", g.err
	}
	return "snap-token", "https://app.sandbox.midtrans.com/snap/v2/vtweb/snap-token", nil
}

type note struct {
	event string
	vars  map[string]string
}

type recNotifier struct {
	mu    sync.Mutex
	notes []note
}

func (n *recNotifier) NotifyAsync(event string, _ uuid.UUID, vars map[string]string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, note{event, vars})
}

const serverKey = "SB-Mid-server-test"

type fixture struct {
	svc      *Service
	repo     *memPayments
	reg      *regModel.Registrant
	formulir biayaModel.Biaya
	asrama   biayaModel.Biaya
	gw       *fakeGateway
	notif    *recNotifier
}

func newFixture() fixture {
	jenjang := uuid.New()
	other := uuid.New()
	formulir := biayaModel.Biaya{ID: uuid.New(), Name: "Formulir", AmountIDR: 150000, IsActive: true, IsMandatory: true, SortOrder: 1}
	asrama := biayaModel.Biaya{ID: uuid.New(), Name: "Asrama", AmountIDR: 2000000, IsActive: true, JenjangID: &other, SortOrder: 2}

	reg := &regModel.Registrant{ID: uuid.New(), UserID: uuid.New(), RegistrationNumber: "PPDB-2026-00007", JenjangID: &jenjang, FullName: "Budi"}
	repo := newMemPayments(formulir, asrama)
	gw := &fakeGateway{}
	n := &recNotifier{}
	svc := New(repo, regs{r: reg}, storage.NewMemoryStore("http://cdn.test"), gw, n, serverKey)
	return fixture{svc: svc, repo: repo, reg: reg, formulir: formulir, asrama: asrama, gw: gw, notif: n}
}

/* ========== tests ========== */

func TestSubmitTransfer(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.reg.UserID, SubmitInput{BiayaID: f.formulir.ID, Method: constants.PaymentTransfer})
	assert.ErrorIs(t, err, ErrProofRequired)

	p, err := f.svc.Submit(ctx, f.reg.UserID, SubmitInput{
		BiayaID: f.formulir.ID, Method: constants.PaymentTransfer,
		Filename: "bukti.pdf", Data: []byte("%PDF-1.4 bukti"), PayerNote: "via BSI",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), p.AmountIDR)
	assert.Equal(t, constants.ReviewPending, p.Status)
	assert.NotEmpty(t, p.ProofURL)

	require.Len(t, f.notif.notes, 1)
	assert.Equal(t, constants.EventPaymentSubmitted, f.notif.notes[0].event)
	assert.Equal(t, "Rp 150.000", f.notif.notes[0].vars["nominal"])

	// baris sekarang pending
	_, err = f.svc.Submit(ctx, f.reg.UserID, SubmitInput{BiayaID: f.formulir.ID, Method: constants.PaymentCash})
	assert.ErrorIs(t, err, ErrLineNotOpen)
}

func TestSubmitRules(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.reg.UserID, SubmitInput{BiayaID: f.asrama.ID, Method: constants.PaymentCash})
	assert.ErrorIs(t, err, ErrBiayaNotApplicable)

	_, err = f.svc.Submit(ctx, f.reg.UserID, SubmitInput{BiayaID: f.formulir.ID, Method: "crypto"})
	assert.ErrorIs(t, err, ErrInvalidMethod)

	_, err = f.svc.Submit(ctx, uuid.New(), SubmitInput{BiayaID: f.formulir.ID, Method: constants.PaymentCash})
	assert.ErrorIs(t, err, regRepo.ErrNotFound)

	f.reg.Status = constants.RegistrantRejected
	_, err = f.svc.Submit(ctx, f.reg.UserID, SubmitInput{BiayaID: f.formulir.ID, Method: constants.PaymentCash})
	assert.ErrorIs(t, err, ErrRegistrantRejected)
}

func TestVerifyFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	p, err := f.svc.Submit(ctx, f.reg.UserID, SubmitInput{BiayaID: f.formulir.ID, Method: constants.PaymentCash})
	require.NoError(t, err)

	admin := uuid.New()
	_, err = f.svc.Verify(ctx, p.ID, constants.ReviewRejected, "", admin)
	assert.ErrorIs(t, err, ErrNoteRequired)

	got, err := f.svc.Verify(ctx, p.ID, constants.ReviewRejected, "Nominal kurang", admin)
	require.NoError(t, err)
	assert.Equal(t, constants.ReviewRejected, got.Status)
	assert.Equal(t, admin, *got.VerifiedBy)

	_, err = f.svc.Verify(ctx, p.ID, constants.ReviewAccepted, "", admin)
	assert.ErrorIs(t, err, ErrNotPending)

	last := f.notif.notes[len(f.notif.notes)-1]
	assert.Equal(t, constants.EventPaymentRejected, last.event)
	assert.Equal(t, "Formulir", last.vars["biaya"])
	assert.Equal(t, "Nominal kurang", last.vars["catatan"])

	// ditolak boleh kirim ulang
	_, err = f.svc.Submit(ctx, f.reg.UserID, SubmitInput{BiayaID: f.formulir.ID, Method: constants.PaymentCash})
	require.NoError(t, err)

	mine, err := f.svc.Mine(ctx, f.reg.UserID)
	require.NoError(t, err)
	assert.Len(t, mine.History, 2)
	assert.Equal(t, LinePending, mine.Reconciliation.Lines[0].Status)
	assert.True(t, mine.GatewayEnabled)
}

func TestCheckoutAndWebhook(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Checkout(ctx, f.reg.UserID, f.formulir.ID)
	require.NoError(t, err)
	assert.Equal(t, "snap-token", res.Token)
	require.NotNil(t, res.Payment.ExternalID)
	orderID := *res.Payment.ExternalID
	assert.Regexp(t, `^PPDB-2026-00007-[0-9a-f]{8}$`, orderID)
	assert.Equal(t, int64(150000), f.gw.last.Amount)

	n := Notification{OrderID: orderID, StatusCode: "200", GrossAmount: "150000.00", TransactionStatus: "settlement", TransactionID: "trx-1"}

	bad := n
	bad.SignatureKey = "deadbeef"
	_, err = f.svc.HandleNotification(ctx, bad)
	assert.ErrorIs(t, err, ErrBadSignature)

	n.SignatureKey = SignatureFor(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	out, err := f.svc.HandleNotification(ctx, n)
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, out)

	p, _ := f.repo.FindByID(ctx, res.Payment.ID)
	assert.Equal(t, constants.ReviewAccepted, p.Status)
	assert.Equal(t, "trx-1", *p.GatewayReference)
	assert.Equal(t, constants.EventPaymentVerified, f.notif.notes[len(f.notif.notes)-1].event)

	// expire setelah settlement tidak menurunkan status
	exp := n
	exp.TransactionStatus = "expire"
	exp.SignatureKey = SignatureFor(exp.OrderID, exp.StatusCode, exp.GrossAmount, serverKey)
	_, err = f.svc.HandleNotification(ctx, exp)
	require.NoError(t, err)
	p, _ = f.repo.FindByID(ctx, res.Payment.ID)
	assert.Equal(t, constants.ReviewAccepted, p.Status)

	for _, ev := range f.repo.events {
		assert.Equal(t, "processed", ev.Status)
	}
}

func TestWebhookUnknownOrderIgnored(t *testing.T) {
	f := newFixture()
	n := Notification{OrderID: "X-1", StatusCode: "200", GrossAmount: "1000.00", TransactionStatus: "settlement"}
	n.SignatureKey = SignatureFor(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)

	out, err := f.svc.HandleNotification(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, ResultIgnored, out)
	require.Len(t, f.repo.events, 1)
	for _, ev := range f.repo.events {
		assert.Equal(t, "ignored", ev.Status)
	}
}

func TestCheckoutDisabledAndGatewayError(t *testing.T) {
	f := newFixture()
	f.gw.err = errors.New("401 unauthorized")
	_, err := f.svc.Checkout(context.Background(), f.reg.UserID, f.formulir.ID)
	require.Error(t, err)
	assert.Empty(t, f.repo.payments)

	f.svc.Gateway = nil
	_, err = f.svc.Checkout(context.Background(), f.reg.UserID, f.formulir.ID)
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}

func TestExpireGateway(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, err := f.svc.Checkout(ctx, f.reg.UserID, f.formulir.ID)
	require.NoError(t, err)

	f.svc.Now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	n, err := f.svc.ExpireGateway(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	p, _ := f.repo.FindByID(ctx, res.Payment.ID)
	assert.Equal(t, constants.ReviewRejected, p.Status)
	assert.Equal(t, ExpiredNote, p.AdminNote)
	assert.Equal(t, constants.EventPaymentRejected, f.notif.notes[len(f.notif.notes)-1].event)
}

func signed(orderID, status string) Notification {
	n := Notification{OrderID: orderID, StatusCode: "200", GrossAmount: "150000.00", TransactionStatus: status}
	n.SignatureKey = SignatureFor(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return n
}

func expireAll(t *testing.T, f fixture) {
	t.Helper()
	now := f.svc.Now
	f.svc.Now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err := f.svc.ExpireGateway(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	f.svc.Now = now
}

func TestWebhookDoesNotReviveExpiredCheckout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, err := f.svc.Checkout(ctx, f.reg.UserID, f.formulir.ID)
	require.NoError(t, err)
	expireAll(t, f)

	for _, st := range []string{"pending", "deny", "expire"} {
		out, err := f.svc.HandleNotification(ctx, signed(*res.Payment.ExternalID, st))
		require.NoError(t, err)
		assert.Equal(t, ResultProcessed, out)

		p, _ := f.repo.FindByID(ctx, res.Payment.ID)
		assert.Equal(t, constants.ReviewRejected, p.Status, st)
		assert.Equal(t, ExpiredNote, p.AdminNote, st)
	}
}

func TestWebhookLateSettlementAcceptedWhenLineIsFree(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	res, err := f.svc.Checkout(ctx, f.reg.UserID, f.formulir.ID)
	require.NoError(t, err)
	expireAll(t, f)

	out, err := f.svc.HandleNotification(ctx, signed(*res.Payment.ExternalID, "settlement"))
	require.NoError(t, err)
	assert.Equal(t, ResultProcessed, out)

	p, _ := f.repo.FindByID(ctx, res.Payment.ID)
	assert.Equal(t, constants.ReviewAccepted, p.Status)
	assert.Equal(t, LateSettlementNote, p.AdminNote)
	require.NotNil(t, p.VerifiedAt)
	assert.Equal(t, constants.EventPaymentVerified, f.notif.notes[len(f.notif.notes)-1].event)
}

func TestWebhookLateSettlementWithNewerCheckoutNeedsManualReview(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	old, err := f.svc.Checkout(ctx, f.reg.UserID, f.formulir.ID)
	require.NoError(t, err)
	expireAll(t, f)

	fresh, err := f.svc.Checkout(ctx, f.reg.UserID, f.formulir.ID)
	require.NoError(t, err)

	out, err := f.svc.HandleNotification(ctx, signed(*old.Payment.ExternalID, "settlement"))
	require.NoError(t, err)
	assert.Equal(t, ResultManual, out)

	p, _ := f.repo.FindByID(ctx, old.Payment.ID)
	assert.Equal(t, constants.ReviewRejected, p.Status)
	p, _ = f.repo.FindByID(ctx, fresh.Payment.ID)
	assert.Equal(t, constants.ReviewPending, p.Status)

	var failed int
	for _, ev := range f.repo.events {
		if ev.Status == model.EventFailed {
			failed++
			assert.Contains(t, ev.Error, "rekonsiliasi manual")
		}
	}
	assert.Equal(t, 1, failed)
}

func TestMapMidtransStatus(t *testing.T) {
	cases := map[[2]string]string{
		{"settlement", ""}:       constants.ReviewAccepted,
		{"capture", "accept"}:    constants.ReviewAccepted,
		{"capture", "challenge"}: constants.ReviewPending,
		{"capture", "deny"}:      constants.ReviewRejected,
		{"pending", ""}:          constants.ReviewPending,
		{"deny", ""}:             constants.ReviewRejected,
		{"cancel", ""}:           constants.ReviewRejected,
		{"expire", ""}:           constants.ReviewRejected,
		{"failure", ""}:          constants.ReviewRejected,
	}
	for in, want := range cases {
		got, ok := MapMidtransStatus(in[0], in[1])
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := MapMidtransStatus("refund", "")
	assert.False(t, ok)
}

func TestVerifySignature(t *testing.T) {
	sig := SignatureFor("A-1", "200", "1000.00", "key")
	assert.True(t, VerifySignature("A-1", "200", "1000.00", "key", sig))
	assert.True(t, VerifySignature("A-1", "200", "1000.00", "key", "  "+sig+" "))
	assert.False(t, VerifySignature("A-1", "201", "1000.00", "key", sig))
	assert.False(t, VerifySignature("A-1", "200", "1000.00", "", sig))
	assert.False(t, VerifySignature("A-1", "200", "1000.00", "key", ""))
}
