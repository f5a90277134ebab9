package controller

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppdb_backend/internals/features/ppdb/payments/model"
	"ppdb_backend/internals/features/ppdb/payments/repository"
	"ppdb_backend/internals/features/ppdb/payments/service"
)

// webhookRepo hanya mengimplementasikan method yang dipakai webhook untuk order tak dikenal.
type webhookRepo struct {
	repository.Repository
	logged int
}

func (r *webhookRepo) LogEvent(_ context.Context, ev *model.PaymentGatewayEvent) error {
	r.logged++
	return nil
}

func (r *webhookRepo) FindByExternalID(context.Context, string) (*model.Payment, error) {
	return nil, repository.ErrNotFound
}

func newWebhookApp(repo repository.Repository) *fiber.App {
	svc := service.New(repo, nil, nil, nil, nil, "server-key")
	ctrl := NewPaymentController(svc, 1<<20)
	app := fiber.New()
	app.Post("/notify", ctrl.MidtransNotification)
	return app
}

func TestMidtransNotificationBadSignature(t *testing.T) {
	repo := &webhookRepo{}
	app := newWebhookApp(repo)

	body := `{"order_id":"PPDB-1","status_code":"200","gross_amount":"1000.00","transaction_status":"settlement","signature_key":"nope"}`
	req := httptest.NewRequest("POST", "/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Zero(t, repo.logged)
}

func TestMidtransNotificationUnknownOrder(t *testing.T) {
	repo := &webhookRepo{}
	app := newWebhookApp(repo)

	sig := service.SignatureFor("PPDB-1", "200", "1000.00", "server-key")
	body := `{"order_id":"PPDB-1","status_code":"200","gross_amount":"1000.00","transaction_status":"settlement","signature_key":"` + sig + `"}`
	req := httptest.NewRequest("POST", "/notify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, repo.logged)
}

func TestParseDateEndOfDay(t *testing.T) {
	from, err := parseDate("2026-07-01", false)
	require.NoError(t, err)
	to, err := parseDate("2026-07-01", true)
	require.NoError(t, err)
	assert.Equal(t, 24.0, to.Sub(*from).Hours())

	none, err := parseDate(" ", false)
	assert.NoError(t, err)
	assert.Nil(t, none)

	_, err = parseDate("01/07/2026", false)
	assert.Error(t, err)
}
