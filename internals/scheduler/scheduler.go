package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type BlacklistCleaner interface {
	CleanupExpiredBlacklist(ctx context.Context, before time.Time) (int64, error)
}

type PaymentExpirer interface {
	ExpireGateway(ctx context.Context, ttl time.Duration) (int, error)
}

type Config struct {
	BlacklistSpec string
	BlacklistTTL  time.Duration
	PaymentSpec   string
	PaymentTTL    time.Duration
	JobTimeout    time.Duration
}

// zapLogger memenuhi cron.Logger.
type zapLogger struct{ l *zap.SugaredLogger }

func (z zapLogger) Info(msg string, kv ...interface{}) { z.l.Debugw("[CRON] "+msg, kv...) }
func (z zapLogger) Error(err error, msg string, kv ...interface{}) {
	z.l.Errorw("[CRON] "+msg, append(kv, "error", err)...)
}

// New mendaftarkan job tanpa menjalankan. Job nil dilewati.
func New(cfg Config, blacklist BlacklistCleaner, payments PaymentExpirer) (*cron.Cron, error) {
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 4 * time.Minute
	}
	logger := zapLogger{l: zap.L().Sugar()}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if blacklist != nil && cfg.BlacklistSpec != "" {
		if _, err := c.AddFunc(cfg.BlacklistSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
			defer cancel()
			RunBlacklistCleanup(ctx, blacklist, cfg.BlacklistTTL, time.Now())
		}); err != nil {
			return nil, fmt.Errorf("jadwal blacklist %q: %w", cfg.BlacklistSpec, err)
		}
	}
	if payments != nil && cfg.PaymentSpec != "" {
		if _, err := c.AddFunc(cfg.PaymentSpec, func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
			defer cancel()
			RunPaymentExpiry(ctx, payments, cfg.PaymentTTL)
		}); err != nil {
			return nil, fmt.Errorf("jadwal expiry pembayaran %q: %w", cfg.PaymentSpec, err)
		}
	}
	return c, nil
}

// Start = New + Start. Hentikan dengan <-c.Stop().Done().
func Start(cfg Config, blacklist BlacklistCleaner, payments PaymentExpirer) (*cron.Cron, error) {
	c, err := New(cfg, blacklist, payments)
	if err != nil {
		return nil, err
	}
	c.Start()
	zap.L().Info("⏱ scheduler berjalan",
		zap.String("blacklist", cfg.BlacklistSpec), zap.String("payment_expiry", cfg.PaymentSpec),
		zap.Int("jobs", len(c.Entries())))
	return c, nil
}

func RunBlacklistCleanup(ctx context.Context, repo BlacklistCleaner, ttl time.Duration, now time.Time) int64 {
	n, err := repo.CleanupExpiredBlacklist(ctx, now.Add(-ttl))
	if err != nil {
		zap.L().Error("[CLEANUP] gagal hapus token_blacklist", zap.Error(err))
		return 0
	}
	if n > 0 {
		zap.L().Info("[CLEANUP] token kedaluwarsa dihapus", zap.Int64("rows", n))
	}
	return n
}

func RunPaymentExpiry(ctx context.Context, svc PaymentExpirer, ttl time.Duration) int {
	n, err := svc.ExpireGateway(ctx, ttl)
	if err != nil {
		zap.L().Error("[EXPIRY] gagal menandai checkout kedaluwarsa", zap.Error(err))
		return 0
	}
	if n > 0 {
		zap.L().Info("[EXPIRY] checkout gateway kedaluwarsa", zap.Int("payments", n))
	}
	return n
}
