package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ppdb_backend/internals/constants"
	"ppdb_backend/internals/databases/dbtest"
	"ppdb_backend/internals/features/ppdb/payments/model"
	helper "ppdb_backend/internals/helpers"
)

func TestCreateUsesAmountColumn(t *testing.T) {
	db, rec := dbtest.DryRun(t)
	ext := "PPDB-2026-00001-abcd1234"
	err := New(db).Create(context.Background(), &model.Payment{
		RegistrantID: uuid.New(),
		BiayaID:      uuid.New(),
		AmountIDR:    150000,
		Method:       constants.PaymentGateway,
		Status:       constants.ReviewPending,
		ExternalID:   &ext,
	})
	require.NoError(t, err)

	insert := rec.Find(`INSERT INTO "payments"`)
	assert.Contains(t, insert, `"amount_idr"`)
	assert.NotContains(t, insert, "amount_id_r")
	assert.Contains(t, insert, "150000")
}

func TestActiveBiayaQuery(t *testing.T) {
	db, rec := dbtest.DryRun(t)
	_, err := New(db).ActiveBiaya(context.Background())
	require.NoError(t, err)

	sql := rec.Find(`FROM "biaya"`)
	assert.Contains(t, sql, "is_active = TRUE")
	assert.Contains(t, sql, `"biaya"."deleted_at" IS NULL`)
	assert.Contains(t, sql, "ORDER BY sort_order ASC, name ASC")
}

func TestExpireGatewayQuery(t *testing.T) {
	db, rec := dbtest.DryRun(t)
	before := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	_, err := New(db).ExpireGateway(context.Background(), before, "Checkout kedaluwarsa")
	require.NoError(t, err)

	sql := rec.Find(`UPDATE "payments"`)
	require.NotEmpty(t, sql)
	assert.Contains(t, sql, `"status"='ditolak'`)
	assert.Contains(t, sql, `"admin_note"='Checkout kedaluwarsa'`)
	assert.Contains(t, sql, "method = 'gateway' AND status = 'pending' AND created_at < '2026-05-01 10:00:00")
	assert.Contains(t, sql, "RETURNING *")
}

func TestListQuery(t *testing.T) {
	db, rec := dbtest.DryRun(t)
	biaya := uuid.MustParse("0d9c4f57-3c68-4a55-8d52-52c6a3b1f0aa")
	f := ListFilter{Status: constants.ReviewPending, BiayaID: &biaya, Q: "budi"}
	p := helper.Params{Page: 2, PerPage: 20, SortBy: "amount", SortOrder: "asc"}

	// Scan tidak didukung DryRun; yang diuji adalah SQL yang dibangun.
	_, _, err := New(db).List(context.Background(), f, p)
	assert.ErrorIs(t, err, gorm.ErrDryRunModeUnsupported)

	count := rec.Find("count(*)", "FROM payments p")
	require.NotEmpty(t, count)
	assert.Contains(t, count, "JOIN registrants r ON r.id = p.registrant_id")
	assert.Contains(t, count, "p.status = 'pending'")
	assert.Contains(t, count, "p.biaya_id = '"+biaya.String()+"'")
	assert.Contains(t, count, "r.full_name ILIKE '%budi%'")

	page := rec.Find("registrant_name", "FROM payments p")
	require.NotEmpty(t, page)
	assert.Contains(t, page, "ORDER BY p.amount_idr ASC,p.id")
	assert.Contains(t, page, "LIMIT 20 OFFSET 20")
}
