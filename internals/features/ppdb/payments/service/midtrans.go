package service

import (
	"context"
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	midtrans "github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"ppdb_backend/internals/constants"
)

/* =========================================================
   Midtrans Snap
========================================================= */

type Customer struct {
	FirstName string
	Email     string
	Phone     string
}

type CheckoutRequest struct {
	OrderID  string
	Amount   int64
	ItemID   string
	ItemName string
	Customer Customer
}

// Gateway membuat transaksi checkout (implementasi: MidtransGateway).
type Gateway interface {
	CreateTransaction(ctx context.Context, req CheckoutRequest) (token, redirectURL string, err error)
}

type MidtransGateway struct {
	client snap.Client
}

// NewMidtransGateway: useProduction=false untuk Sandbox.
func NewMidtransGateway(serverKey string, useProduction bool) *MidtransGateway {
	g := &MidtransGateway{}
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	g.client.New(serverKey, env)
	return g
}

func (g *MidtransGateway) CreateTransaction(_ context.Context, r CheckoutRequest) (string, string, error) {
	if r.Amount <= 0 {
		return "", "", errors.New("nominal tidak valid")
	}
	if r.OrderID == "" {
		return "", "", errors.New("order id wajib diisi")
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  r.OrderID,
			GrossAmt: r.Amount,
		},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: r.Customer.FirstName,
			Email: r.Customer.Email,
			Phone: r.Customer.Phone,
		},
		Items: &[]midtrans.ItemDetails{{
			ID:       truncate(r.ItemID, 50),
			Price:    r.Amount,
			Qty:      1,
			Name:     truncate(r.ItemName, 50),
			Category: "PPDB",
		}},
	}

	resp, mErr := g.client.CreateTransaction(req)
	if mErr != nil {
		return "", "", mErr
	}
	return resp.Token, resp.RedirectURL, nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[:n]
}

/* =========================================================
   Webhook helpers
========================================================= */

// NewOrderID: <no_pendaftaran>-<8 hex>
func NewOrderID(registrationNumber string) string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return registrationNumber + "-" + hex.EncodeToString(b)
}

func SignatureFor(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

// VerifySignature: SHA512(order_id + status_code + gross_amount + server_key)
func VerifySignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	if signature == "" || serverKey == "" {
		return false
	}
	want := SignatureFor(orderID, statusCode, grossAmount, serverKey)
	got := strings.ToLower(strings.TrimSpace(signature))
	return subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}

// MapMidtransStatus: status transaksi Midtrans -> status pembayaran. ok=false berarti diabaikan.
func MapMidtransStatus(transactionStatus, fraudStatus string) (string, bool) {
	switch strings.ToLower(transactionStatus) {
	case "settlement":
		return constants.ReviewAccepted, true
	case "capture":
		switch strings.ToLower(fraudStatus) {
		case "", "accept":
			return constants.ReviewAccepted, true
		case "challenge":
			return constants.ReviewPending, true
		}
		return constants.ReviewRejected, true
	case "pending":
		return constants.ReviewPending, true
	case "deny", "cancel", "expire", "failure":
		return constants.ReviewRejected, true
	}
	return "", false
}
