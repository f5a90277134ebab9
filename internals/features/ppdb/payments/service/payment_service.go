package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/payments/model"
	"ppdb_backend/internals/features/ppdb/payments/repository"
	regModel "ppdb_backend/internals/features/ppdb/registrants/model"
	helper "ppdb_backend/internals/helpers"
	"ppdb_backend/internals/helpers/storage"
)

var (
	ErrNotFound           = repository.ErrNotFound
	ErrBiayaNotApplicable = errors.New("biaya tidak berlaku untuk pendaftar ini")
	ErrLineNotOpen        = errors.New("biaya ini sudah dibayar atau sedang diverifikasi")
	ErrProofRequired      = errors.New("bukti pembayaran wajib diunggah")
	ErrInvalidMethod      = errors.New("metode pembayaran tidak valid")
	ErrNotPending         = errors.New("hanya pembayaran pending yang bisa diverifikasi")
	ErrNoteRequired       = errors.New("catatan wajib diisi untuk penolakan")
	ErrGatewayDisabled    = errors.New("pembayaran online belum tersedia")
	ErrBadSignature       = errors.New("signature tidak valid")
	ErrRegistrantRejected = errors.New("pendaftaran sudah ditolak")
)

const ExpiredNote = "Checkout kedaluwarsa"

type Notifier interface {
	NotifyAsync(event string, registrantID uuid.UUID, vars map[string]string)
}

type RegistrantFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*regModel.Registrant, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*regModel.Registrant, error)
}

type Service struct {
	Repo        repository.Repository
	Registrants RegistrantFinder
	Store       storage.BlobStore
	Gateway     Gateway // nil = checkout nonaktif
	Notify      Notifier
	ServerKey   string
	Now         func() time.Time
}

func New(repo repository.Repository, regs RegistrantFinder, store storage.BlobStore, gw Gateway, notify Notifier, serverKey string) *Service {
	return &Service{
		Repo:        repo,
		Registrants: regs,
		Store:       store,
		Gateway:     gw,
		Notify:      notify,
		ServerKey:   serverKey,
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) notify(event string, registrantID uuid.UUID, vars map[string]string) {
	if s.Notify != nil {
		s.Notify.NotifyAsync(event, registrantID, vars)
	}
}

/* =========================
   Rekonsiliasi
========================= */

func (s *Service) ReconcileFor(ctx context.Context, r *regModel.Registrant) (Reconciliation, error) {
	all, err := s.Repo.ActiveBiaya(ctx)
	if err != nil {
		return Reconciliation{}, err
	}
	payments, err := s.Repo.ForRegistrant(ctx, r.ID)
	if err != nil {
		return Reconciliation{}, err
	}
	return Reconcile(ApplicableBiaya(all, r.JalurID, r.JenjangID), payments), nil
}

// SummaryFor dipakai detail pendaftar.
func (s *Service) SummaryFor(ctx context.Context, r *regModel.Registrant) (any, error) {
	rec, err := s.ReconcileFor(ctx, r)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type MyPayments struct {
	RegistrantID       uuid.UUID       `json:"registrant_id"`
	RegistrationNumber string          `json:"registration_number"`
	Reconciliation     Reconciliation  `json:"reconciliation"`
	History            []model.Payment `json:"history"`
	GatewayEnabled     bool            `json:"gateway_enabled"`
}

func (s *Service) Mine(ctx context.Context, userID uuid.UUID) (*MyPayments, error) {
	r, err := s.Registrants.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	rec, err := s.ReconcileFor(ctx, r)
	if err != nil {
		return nil, err
	}
	history, err := s.Repo.ForRegistrant(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return &MyPayments{
		RegistrantID:       r.ID,
		RegistrationNumber: r.RegistrationNumber,
		Reconciliation:     rec,
		History:            history,
		GatewayEnabled:     s.Gateway != nil,
	}, nil
}

func (s *Service) ForRegistrantID(ctx context.Context, registrantID uuid.UUID) (*regModel.Registrant, Reconciliation, error) {
	r, err := s.Registrants.FindByID(ctx, registrantID)
	if err != nil {
		return nil, Reconciliation{}, err
	}
	rec, err := s.ReconcileFor(ctx, r)
	return r, rec, err
}

// openLine: pendaftar + baris biaya yang masih boleh dibayar.
func (s *Service) openLine(ctx context.Context, userID, biayaID uuid.UUID) (*regModel.Registrant, Line, error) {
	r, err := s.Registrants.FindByUserID(ctx, userID)
	if err != nil {
		return nil, Line{}, err
	}
	if r.Status == constants.RegistrantRejected {
		return nil, Line{}, ErrRegistrantRejected
	}
	rec, err := s.ReconcileFor(ctx, r)
	if err != nil {
		return nil, Line{}, err
	}
	line, ok := rec.Line(biayaID)
	if !ok {
		return nil, Line{}, ErrBiayaNotApplicable
	}
	if !line.CanSubmit() {
		return nil, Line{}, ErrLineNotOpen
	}
	return r, line, nil
}

func paymentVars(b string, amount int64, note string) map[string]string {
	return map[string]string{
		"biaya":   b,
		"nominal": helper.FormatRupiah(amount),
		"catatan": note,
	}
}

/* =========================
   Calon siswa
========================= */

type SubmitInput struct {
	BiayaID   uuid.UUID
	Method    string
	PayerNote string
	Filename  string
	Data      []byte
}

// Submit: transfer wajib bukti; cash boleh tanpa bukti (dibayar di sekolah).
func (s *Service) Submit(ctx context.Context, userID uuid.UUID, in SubmitInput) (*model.Payment, error) {
	switch in.Method {
	case constants.PaymentTransfer:
		if len(in.Data) == 0 {
			return nil, ErrProofRequired
		}
	case constants.PaymentCash:
	default:
		return nil, ErrInvalidMethod
	}

	r, line, err := s.openLine(ctx, userID, in.BiayaID)
	if err != nil {
		return nil, err
	}

	p := &model.Payment{
		RegistrantID: r.ID,
		BiayaID:      line.Biaya.ID,
		AmountIDR:    line.Biaya.AmountIDR,
		Method:       in.Method,
		Status:       constants.ReviewPending,
		PayerNote:    in.PayerNote,
	}

	if len(in.Data) > 0 {
		st, err := storage.Upload(ctx, s.Store, fmt.Sprintf("payments/%s", r.ID), in.Filename, in.Data, &storage.DocumentWebP)
		if err != nil {
			return nil, err
		}
		p.ProofURL, p.ProofObjectKey = st.URL, st.Key
	}

	if err := s.Repo.Create(ctx, p); err != nil {
		if p.ProofObjectKey != "" {
			_ = s.Store.Delete(ctx, p.ProofObjectKey)
		}
		return nil, err
	}

	s.notify(constants.EventPaymentSubmitted, r.ID, paymentVars(line.Biaya.Name, p.AmountIDR, in.PayerNote))
	return p, nil
}

type CheckoutResult struct {
	Payment     *model.Payment `json:"payment"`
	Token       string         `json:"token"`
	RedirectURL string         `json:"redirect_url"`
}

// Checkout membuat transaksi Snap lalu mencatat pembayaran gateway pending.
func (s *Service) Checkout(ctx context.Context, userID, biayaID uuid.UUID) (*CheckoutResult, error) {
	if s.Gateway == nil {
		return nil, ErrGatewayDisabled
	}
	r, line, err := s.openLine(ctx, userID, biayaID)
	if err != nil {
		return nil, err
	}

	orderID := NewOrderID(r.RegistrationNumber)
	token, redirect, err := s.Gateway.CreateTransaction(ctx, CheckoutRequest{
		OrderID:  orderID,
		Amount:   line.Biaya.AmountIDR,
		ItemID:   line.Biaya.ID.String(),
		ItemName: line.Biaya.Name,
		Customer: Customer{FirstName: r.FullName, Phone: r.Phone},
	})
	if err != nil {
		zap.L().Error("midtrans create transaction gagal", zap.String("order_id", orderID), zap.Error(err))
		return nil, fmt.Errorf("gateway: %w", err)
	}

	p := &model.Payment{
		RegistrantID:  r.ID,
		BiayaID:       line.Biaya.ID,
		AmountIDR:     line.Biaya.AmountIDR,
		Method:        constants.PaymentGateway,
		Status:        constants.ReviewPending,
		ExternalID:    &orderID,
		CheckoutToken: &token,
		CheckoutURL:   &redirect,
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return &CheckoutResult{Payment: p, Token: token, RedirectURL: redirect}, nil
}

/* =========================
   Webhook Midtrans
========================= */

type Notification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	TransactionID     string `json:"transaction_id"`
}

const (
	ResultProcessed = "ok"
	ResultIgnored   = "ignored"
	ResultManual    = "manual_review"
)

const LateSettlementNote = "Dana gateway masuk setelah checkout ditolak/kedaluwarsa"

// HandleNotification: verifikasi signature, log event, update status pembayaran.
func (s *Service) HandleNotification(ctx context.Context, n Notification) (string, error) {
	if !VerifySignature(n.OrderID, n.StatusCode, n.GrossAmount, s.ServerKey, n.SignatureKey) {
		return "", ErrBadSignature
	}

	payload, _ := sonic.Marshal(n)
	ev := &model.PaymentGatewayEvent{
		Provider:    model.ProviderMidtrans,
		EventType:   n.TransactionStatus,
		OrderID:     n.OrderID,
		ExternalRef: n.TransactionID,
		Payload:     payload,
		Status:      model.EventReceived,
		ReceivedAt:  s.Now(),
	}
	if err := s.Repo.LogEvent(ctx, ev); err != nil {
		zap.L().Warn("log gateway event gagal", zap.String("order_id", n.OrderID), zap.Error(err))
	}
	finish := func(status, msg string) {
		if ev.ID == uuid.Nil {
			return
		}
		if err := s.Repo.FinishEvent(ctx, ev.ID, status, msg, s.Now()); err != nil {
			zap.L().Warn("update gateway event gagal", zap.Error(err))
		}
	}

	p, err := s.Repo.FindByExternalID(ctx, n.OrderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			finish(model.EventIgnored, "payment tidak ditemukan")
			return ResultIgnored, nil
		}
		finish(model.EventFailed, err.Error())
		return "", err
	}

	target, ok := MapMidtransStatus(n.TransactionStatus, n.FraudStatus)
	if !ok {
		finish(model.EventIgnored, "status tidak dipetakan: "+n.TransactionStatus)
		return ResultIgnored, nil
	}

	var prev string
	now := s.Now()
	updated, err := s.Repo.WithLocked(ctx, p.ID, func(p *model.Payment) error {
		prev = p.Status
		if n.TransactionID != "" {
			ref := n.TransactionID
			p.GatewayReference = &ref
		}
		switch {
		// pembayaran yang sudah diterima tidak diturunkan lagi
		case p.Status == constants.ReviewAccepted:
			return nil
		// checkout yang sudah ditolak hanya bisa naik lewat settlement
		case p.Status == constants.ReviewRejected && target != constants.ReviewAccepted:
			return nil
		case p.Status == constants.ReviewRejected:
			p.AdminNote = LateSettlementNote
		case target == constants.ReviewRejected:
			p.AdminNote = "Transaksi " + n.TransactionStatus
		}
		p.Status = target
		if target == constants.ReviewAccepted {
			p.VerifiedAt = &now
		}
		return nil
	})
	if err != nil {
		// settlement telat sementara biaya yang sama sudah punya pembayaran aktif lain
		if helper.IsUniqueViolation(err) {
			zap.L().Warn("⚠️ settlement midtrans perlu rekonsiliasi manual",
				zap.String("order_id", n.OrderID),
				zap.String("payment_id", p.ID.String()))
			finish(model.EventFailed, "rekonsiliasi manual: biaya sudah punya pembayaran aktif lain")
			return ResultManual, nil
		}
		finish(model.EventFailed, err.Error())
		return "", err
	}
	finish(model.EventProcessed, "")

	if prev != updated.Status {
		s.notifyReview(ctx, updated)
	}
	return ResultProcessed, nil
}

func (s *Service) notifyReview(ctx context.Context, p *model.Payment) {
	name := ""
	if b, err := s.Repo.FindBiaya(ctx, p.BiayaID); err == nil {
		name = b.Name
	}
	switch p.Status {
	case constants.ReviewAccepted:
		s.notify(constants.EventPaymentVerified, p.RegistrantID, paymentVars(name, p.AmountIDR, p.AdminNote))
	case constants.ReviewRejected:
		s.notify(constants.EventPaymentRejected, p.RegistrantID, paymentVars(name, p.AmountIDR, p.AdminNote))
	}
}

/* =========================
   Admin
========================= */

func (s *Service) List(ctx context.Context, f repository.ListFilter, p helper.Params) ([]repository.PaymentListItem, int64, error) {
	return s.Repo.List(ctx, f, p)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return s.Repo.FindByID(ctx, id)
}

// Verify: hanya pending; ditolak wajib catatan.
func (s *Service) Verify(ctx context.Context, id uuid.UUID, status, note string, adminID uuid.UUID) (*model.Payment, error) {
	if status == constants.ReviewRejected && note == "" {
		return nil, ErrNoteRequired
	}
	now := s.Now()
	p, err := s.Repo.WithLocked(ctx, id, func(p *model.Payment) error {
		if p.Status != constants.ReviewPending {
			return ErrNotPending
		}
		p.Status = status
		p.AdminNote = note
		p.VerifiedBy = &adminID
		p.VerifiedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyReview(ctx, p)
	return p, nil
}

// ExpireGateway dipanggil scheduler: checkout pending lebih lama dari ttl menjadi ditolak.
func (s *Service) ExpireGateway(ctx context.Context, ttl time.Duration) (int, error) {
	rows, err := s.Repo.ExpireGateway(ctx, s.Now().Add(-ttl), ExpiredNote)
	if err != nil {
		return 0, err
	}
	for i := range rows {
		s.notifyReview(ctx, &rows[i])
	}
	return len(rows), nil
}
