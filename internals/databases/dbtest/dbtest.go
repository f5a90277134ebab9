// Package dbtest menyediakan *gorm.DB postgres mode DryRun untuk test:
// SQL dibangun oleh dialector postgres asli tapi tidak pernah dikirim ke server.
// Jalur yang memakai db.Transaction tetap butuh koneksi, jangan dipakai di sini.
package dbtest

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type Statement struct {
	SQL  string
	Vars []any
}

// Recorder mencatat setiap statement yang dibangun GORM.
type Recorder struct {
	mu    sync.Mutex
	stmts []string
}

func (r *Recorder) LogMode(gormLogger.LogLevel) gormLogger.Interface { return r }
func (r *Recorder) Info(context.Context, string, ...interface{})     {}
func (r *Recorder) Warn(context.Context, string, ...interface{})     {}
func (r *Recorder) Error(context.Context, string, ...interface{})    {}

func (r *Recorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	r.stmts = append(r.stmts, sql)
	r.mu.Unlock()
}

func (r *Recorder) All() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.stmts...)
}

// Find: statement pertama yang mengandung semua potongan.
func (r *Recorder) Find(parts ...string) string {
	for _, s := range r.All() {
		ok := true
		for _, p := range parts {
			if !strings.Contains(s, p) {
				ok = false
				break
			}
		}
		if ok {
			return s
		}
	}
	return ""
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.stmts = nil
	r.mu.Unlock()
}

func DryRun(t testing.TB) (*gorm.DB, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=127.0.0.1 user=ppdb dbname=ppdb sslmode=disable",
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 rec,
	})
	require.NoError(t, err)
	return db, rec
}

// LastCreate menjalankan Create dalam DryRun dan mengembalikan SQL + vars mentah.
func LastCreate(t testing.TB, db *gorm.DB, value any) Statement {
	t.Helper()
	res := db.Create(value)
	require.NoError(t, res.Error)
	return Statement{SQL: res.Statement.SQL.String(), Vars: res.Statement.Vars}
}
