package helper

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestFormatRupiah(t *testing.T) {
	cases := map[int64]string{
		0:        "Rp 0",
		500:      "Rp 500",
		1000:     "Rp 1.000",
		1250000:  "Rp 1.250.000",
		-25000:   "-Rp 25.000",
		10000000: "Rp 10.000.000",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatRupiah(in), "amount %d", in)
	}
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "jalur-prestasi", Slugify("  Jalur  Prestasi!! ", 0))
	assert.Equal(t, "cafe-creme", Slugify("Café Crème", 0))
	assert.Equal(t, "item", Slugify("???", 0))
	assert.Equal(t, "abc", Slugify("abc-def", 4))
}

func TestTrimForSuffix(t *testing.T) {
	assert.Equal(t, "abc", trimForSuffix("abcdef", "-2", 5))
	assert.Equal(t, "x", trimForSuffix("abc", "-123", 3))
}

func TestParseValues(t *testing.T) {
	q := map[string]string{"page": "3", "per_page": "1000", "order": "ASC", "sort_by": "name"}
	p := ParseValues(func(k string) string { return q[k] }, "created_at", "desc", DefaultOpts)
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, DefaultOpts.MaxPerPage, p.PerPage)
	assert.Equal(t, "asc", p.SortOrder)
	assert.Equal(t, "name", p.SortBy)
	assert.Equal(t, 200, p.Offset())

	q = map[string]string{"page": "-1", "per_page": "all"}
	p = ParseValues(func(k string) string { return q[k] }, "created_at", "bogus", ExportOpts)
	assert.True(t, p.All)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, ExportOpts.AllHardCap, p.PerPage)
	assert.Equal(t, "desc", p.SortOrder)
}

func TestSafeOrderClause(t *testing.T) {
	allowed := map[string]string{"created_at": "created_at", "name": "full_name"}
	p := Params{SortBy: "name", SortOrder: "asc"}
	got, err := p.SafeOrderClause(allowed, "created_at")
	require.NoError(t, err)
	assert.Equal(t, "full_name ASC", got)

	p = Params{SortBy: "1;drop table", SortOrder: "desc"}
	got, err = p.SafeOrderClause(allowed, "created_at")
	require.NoError(t, err)
	assert.Equal(t, "created_at DESC", got)

	_, err = p.SafeOrderClause(allowed, "missing")
	assert.Error(t, err)
}

func TestBuildMeta(t *testing.T) {
	m := BuildMeta(45, Params{Page: 2, PerPage: 20})
	assert.Equal(t, 3, m.TotalPages)
	assert.True(t, m.HasNext)
	assert.True(t, m.HasPrev)
	require.NotNil(t, m.NextPage)
	assert.Equal(t, 3, *m.NextPage)

	m = BuildMeta(0, Params{Page: 1, PerPage: 20})
	assert.Equal(t, 0, m.TotalPages)
	assert.False(t, m.HasNext)
	assert.Nil(t, m.PrevPage)
}

func TestMapPGError(t *testing.T) {
	assertCode := func(err error, code int) {
		t.Helper()
		var fe *fiber.Error
		require.True(t, errors.As(MapPGError(err), &fe))
		assert.Equal(t, code, fe.Code)
	}
	assertCode(gorm.ErrRecordNotFound, fiber.StatusNotFound)
	assertCode(&pgconn.PgError{Code: "23505", ConstraintName: "uq_jalur_slug"}, fiber.StatusConflict)
	assertCode(&pq.Error{Code: "23503"}, fiber.StatusBadRequest)
	assertCode(errors.New("boom"), fiber.StatusInternalServerError)
	assertCode(fiber.NewError(fiber.StatusTeapot, "x"), fiber.StatusTeapot)
	assert.NoError(t, MapPGError(nil))
}

func decodeBody(t *testing.T, body io.Reader) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, sonic.Unmarshal(raw, &out))
	return out
}

func TestJsonResponses(t *testing.T) {
	app := fiber.New()
	app.Get("/ok", func(c *fiber.Ctx) error { return JsonOK(c, "", fiber.Map{"a": 1}) })
	app.Get("/list", func(c *fiber.Ctx) error {
		p := ParseFiber(c, "created_at", "desc", DefaultOpts)
		return JsonList(c, "daftar", []int{1, 2}, BuildMeta(2, p))
	})
	app.Get("/err", func(c *fiber.Ctx) error { return JsonError(c, fiber.StatusConflict, "bentrok") })
	app.Get("/fiber", func(c *fiber.Ctx) error {
		return FromFiberError(c, fiber.NewError(fiber.StatusForbidden, "dilarang"))
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	body := decodeBody(t, resp.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "ok", body["message"])

	resp, err = app.Test(httptest.NewRequest("GET", "/list?page=1&per_page=10", nil))
	require.NoError(t, err)
	body = decodeBody(t, resp.Body)
	pg := body["pagination"].(map[string]any)
	assert.EqualValues(t, 10, pg["per_page"])
	assert.EqualValues(t, 2, pg["total"])

	resp, err = app.Test(httptest.NewRequest("GET", "/err", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	body = decodeBody(t, resp.Body)
	assert.Equal(t, "CONFLICT", body["error_code"])

	resp, err = app.Test(httptest.NewRequest("GET", "/fiber", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

type sampleInput struct {
	FullName string `json:"full_name" validate:"required"`
	Gender   string `json:"gender" validate:"omitempty,oneof=L P"`
	Phone    string `json:"phone" validate:"phone_id"`
}

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()
	err := v.Struct(sampleInput{Gender: "X", Phone: "abc"})
	require.Error(t, err)
	var ve validator.ValidationErrors
	require.True(t, errors.As(err, &ve))
	msgs := ValidationMessages(ve)
	assert.Contains(t, msgs, "full_name")
	assert.Contains(t, msgs, "gender")
	assert.Contains(t, msgs, "phone")

	assert.NoError(t, v.Struct(sampleInput{FullName: "Aisyah", Phone: "0812-3456-7890"}))
}

func TestGetUserIDFromToken(t *testing.T) {
	id := uuid.New()
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		switch c.Query("mode") {
		case "uuid":
			c.Locals("user_id", id)
		case "string":
			c.Locals("user_id", id.String())
		case "bad":
			c.Locals("user_id", "nope")
		}
		got, err := GetUserIDFromToken(c)
		if err != nil {
			return FromFiberError(c, err)
		}
		return c.SendString(got.String())
	})

	for mode, want := range map[string]int{"uuid": 200, "string": 200, "bad": 400, "": 401} {
		resp, err := app.Test(httptest.NewRequest("GET", "/?mode="+mode, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, "mode %q", mode)
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("  bearer   abc "))
	assert.Empty(t, BearerToken("Bearer "))
	assert.Empty(t, BearerToken("Basic dXNlcg=="))
}

func TestAccessTokenOrder(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		if c.Query("remember") != "" {
			RememberAccessToken(c, "dari-locals")
		}
		return c.SendString(AccessToken(c))
	})

	get := func(path string, hdr map[string]string) string {
		req := httptest.NewRequest("GET", path, nil)
		for k, v := range hdr {
			req.Header.Set(k, v)
		}
		res, err := app.Test(req)
		require.NoError(t, err)
		b, _ := io.ReadAll(res.Body)
		return string(b)
	}

	assert.Equal(t, "dari-locals", get("/?remember=1", map[string]string{"Authorization": "Bearer h"}))
	assert.Equal(t, "h", get("/", map[string]string{"Authorization": "Bearer h", "Cookie": "access_token=c"}))
	assert.Equal(t, "c", get("/", map[string]string{"Cookie": "access_token=c"}))
	assert.Empty(t, get("/", nil))
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-9")
	assert.Equal(t, "req-9", RequestIDFrom(ctx))
	assert.Empty(t, RequestIDFrom(context.Background()))
	assert.Equal(t, context.Background(), WithRequestID(context.Background(), ""))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(&pq.Error{Code: "23505"}))
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("x")))
	assert.False(t, IsUniqueViolation(nil))
}
