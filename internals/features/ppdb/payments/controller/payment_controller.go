package controller

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/features/ppdb/payments/repository"
	"ppdb_backend/internals/features/ppdb/payments/service"
	fileController "ppdb_backend/internals/features/ppdb/registrant_files/controller"
	fileService "ppdb_backend/internals/features/ppdb/registrant_files/service"
	regService "ppdb_backend/internals/features/ppdb/registrants/service"
	helper "ppdb_backend/internals/helpers"
	"ppdb_backend/internals/helpers/storage"
)

var validate = helper.NewValidator()

type PaymentController struct {
	Svc      *service.Service
	MaxBytes int64
}

func NewPaymentController(svc *service.Service, maxBytes int64) *PaymentController {
	return &PaymentController{Svc: svc, MaxBytes: maxBytes}
}

type checkoutRequest struct {
	BiayaID string `json:"biaya_id" validate:"required,uuid"`
}

type verifyRequest struct {
	Status string `json:"status" validate:"required,oneof=diterima ditolak"`
	Note   string `json:"note" validate:"required_if=Status ditolak,max=1000"`
}

func paymentError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, regService.ErrNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, "Data pendaftar tidak ditemukan")
	case errors.Is(err, service.ErrBadSignature):
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrLineNotOpen),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrRegistrantRejected):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrGatewayDisabled):
		return helper.JsonError(c, fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, fileService.ErrTooLarge):
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrProofRequired),
		errors.Is(err, service.ErrNoteRequired):
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, service.ErrBiayaNotApplicable),
		errors.Is(err, service.ErrInvalidMethod),
		errors.Is(err, storage.ErrUnsupportedImage):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	}
	return helper.FromFiberError(c, helper.MapPGError(err))
}

func parseDate(v string, endOfDay bool) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.Local)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}

func parseFilter(c *fiber.Ctx) (repository.ListFilter, error) {
	f := repository.ListFilter{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Method: strings.ToLower(strings.TrimSpace(c.Query("method"))),
		Q:      c.Query("q"),
	}
	if f.Status != "" && f.Status != constants.ReviewPending && f.Status != constants.ReviewAccepted && f.Status != constants.ReviewRejected {
		return f, fiber.NewError(fiber.StatusBadRequest, "status tidak valid")
	}
	if f.Method != "" && f.Method != constants.PaymentTransfer && f.Method != constants.PaymentCash && f.Method != constants.PaymentGateway {
		return f, fiber.NewError(fiber.StatusBadRequest, "method tidak valid")
	}
	for key, dst := range map[string]**uuid.UUID{"biaya_id": &f.BiayaID, "registrant_id": &f.RegistrantID} {
		v := strings.TrimSpace(c.Query(key))
		if v == "" {
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil {
			return f, fiber.NewError(fiber.StatusBadRequest, key+" tidak valid")
		}
		*dst = &id
	}
	var err error
	if f.From, err = parseDate(c.Query("from"), false); err != nil {
		return f, fiber.NewError(fiber.StatusBadRequest, "from harus YYYY-MM-DD")
	}
	if f.To, err = parseDate(c.Query("to"), true); err != nil {
		return f, fiber.NewError(fiber.StatusBadRequest, "to harus YYYY-MM-DD")
	}
	return f, nil
}

/* =========================
   Calon siswa (/api/u)
========================= */

// GET /api/u/me/payments
func (h *PaymentController) Mine(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	out, err := h.Svc.Mine(c.UserContext(), userID)
	if err != nil {
		return paymentError(c, err)
	}
	return helper.JsonOK(c, "Tagihan & pembayaran", out)
}

// POST /api/u/me/payments (multipart: biaya_id, method, payer_note, proof)
func (h *PaymentController) Submit(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	biayaID, err := uuid.Parse(strings.TrimSpace(c.FormValue("biaya_id")))
	if err != nil {
		return helper.JsonValidationError(c, map[string][]string{"biaya_id": {"wajib berupa UUID"}})
	}
	in := service.SubmitInput{
		BiayaID:   biayaID,
		Method:    strings.ToLower(strings.TrimSpace(c.FormValue("method", constants.PaymentTransfer))),
		PayerNote: strings.TrimSpace(c.FormValue("payer_note")),
	}
	if len(in.PayerNote) > 500 {
		return helper.JsonValidationError(c, map[string][]string{"payer_note": {"maksimal 500 karakter"}})
	}

	if _, ferr := c.FormFile("proof"); ferr == nil {
		name, data, err := fileController.ReadFormFile(c, "proof", h.MaxBytes)
		if err != nil {
			return paymentError(c, err)
		}
		in.Filename, in.Data = name, data
	}

	p, err := h.Svc.Submit(c.UserContext(), userID, in)
	if err != nil {
		return paymentError(c, err)
	}
	return helper.JsonCreated(c, "Pembayaran terkirim, menunggu verifikasi", p)
}

// POST /api/u/me/payments/checkout
func (h *PaymentController) Checkout(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}
	out, err := h.Svc.Checkout(c.UserContext(), userID, uuid.MustParse(req.BiayaID))
	if err != nil {
		return paymentError(c, err)
	}
	return helper.JsonCreated(c, "Checkout dibuat", out)
}

/* =========================
   Webhook (/api/public)
========================= */

// POST /api/public/payments/midtrans/notification
func (h *PaymentController) MidtransNotification(c *fiber.Ctx) error {
	var n service.Notification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	res, err := h.Svc.HandleNotification(c.UserContext(), n)
	if err != nil {
		if !errors.Is(err, service.ErrBadSignature) {
			zap.L().Error("❌ midtrans notification gagal", zap.String("order_id", n.OrderID), zap.Error(err))
		}
		return paymentError(c, err)
	}
	return helper.JsonOK(c, res, fiber.Map{"order_id": n.OrderID})
}

/* =========================
   Admin & bendahara (/api/a)
========================= */

// GET /api/a/payments
func (h *PaymentController) List(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p := helper.ParseFiber(c, "created_at", "desc", helper.AdminOpts)
	rows, total, err := h.Svc.List(c.UserContext(), f, p)
	if err != nil {
		return paymentError(c, err)
	}
	return helper.JsonList(c, "Daftar pembayaran", rows, helper.BuildMeta(total, p))
}

// GET /api/a/payments/:id
func (h *PaymentController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	p, err := h.Svc.Get(c.UserContext(), id)
	if err != nil {
		return paymentError(c, err)
	}
	return helper.JsonOK(c, "Detail pembayaran", p)
}

// PATCH /api/a/payments/:id/verify
func (h *PaymentController) Verify(c *fiber.Ctx) error {
	adminID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	req.Note = strings.TrimSpace(req.Note)
	if err := validate.Struct(req); err != nil {
		return helper.ValidationError(c, err)
	}

	p, err := h.Svc.Verify(c.UserContext(), id, req.Status, req.Note, adminID)
	if err != nil {
		return paymentError(c, err)
	}
	return helper.JsonUpdated(c, "Status pembayaran diperbarui", p)
}

// GET /api/a/registrants/:id/payments
func (h *PaymentController) ForRegistrant(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	r, rec, err := h.Svc.ForRegistrantID(c.UserContext(), id)
	if err != nil {
		return paymentError(c, err)
	}
	return helper.JsonOK(c, "Rekonsiliasi pembayaran", fiber.Map{
		"registrant_id":       r.ID,
		"registration_number": r.RegistrationNumber,
		"full_name":           r.FullName,
		"reconciliation":      rec,
	})
}
