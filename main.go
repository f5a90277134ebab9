package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ppdb_backend/internals/configs"
	database "ppdb_backend/internals/databases"
	middlewares "ppdb_backend/internals/middlewares"
	routes "ppdb_backend/internals/route"
	"ppdb_backend/internals/scheduler"
	"ppdb_backend/internals/seeds"
)

var seedFile string

var rootCmd = &cobra.Command{
	Use:   "ppdb",
	Short: "Backend PPDB (penerimaan peserta didik baru)",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configs.InitLogger(false)
		configs.LoadEnv()
		if configs.App.Debug {
			configs.InitLogger(true)
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error { return serve() },
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Jalankan HTTP server + scheduler",
	RunE:  func(cmd *cobra.Command, args []string) error { return serve() },
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "AutoMigrate semua tabel",
	RunE: func(cmd *cobra.Command, args []string) error {
		database.ConnectDB()
		defer database.Close()
		return database.AutoMigrate(database.DB)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Isi data awal (jalur, jenjang, biaya, kontak, template WA, admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := seeds.Load(seedFile)
		if err != nil {
			return err
		}
		database.ConnectDB()
		defer database.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
		defer cancel()
		return seeds.Run(ctx, database.DB, f, seeds.Admin{
			Email:    configs.App.SeedAdminEmail,
			Password: configs.App.SeedAdminPassword,
		})
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "file seed YAML (kosong = bawaan)")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serve() error {
	cfg := configs.App
	defer func() { _ = zap.L().Sync() }()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		ErrorHandler:            middlewares.ErrorHandler,
		BodyLimit:               int(cfg.MaxUploadBytes) + 1<<20,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	app.Use(middlewares.RequestID(15 * time.Second))
	middlewares.SetupMiddlewares(app, cfg)

	// 🔌 DB connect + pool + warm-up
	database.ConnectDB()
	database.TunePool()
	database.WarmUpQueries()

	deps, err := routes.SetupRoutes(app, database.DB, cfg)
	if err != nil {
		return err
	}

	// ⏱ scheduler setelah DB siap
	cron, err := scheduler.Start(scheduler.Config{
		BlacklistSpec: cfg.CronBlacklistCleanup,
		BlacklistTTL:  time.Duration(cfg.BlacklistTTLDays) * 24 * time.Hour,
		PaymentSpec:   cfg.CronPaymentExpiry,
		PaymentTTL:    cfg.PaymentGatewayExpiry,
	}, deps.AuthRepo, deps.Payments)
	if err != nil {
		return err
	}

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	go func() {
		zap.L().Info("✅ Listening", zap.String("port", cfg.Port))
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			zap.L().Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown: server → cron → notifikasi WA → pool DB
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("🛑 shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)

	select {
	case <-cron.Stop().Done():
	case <-ctx.Done():
	}

	waDone := make(chan struct{})
	go func() {
		deps.WhatsApp.Wait()
		close(waDone)
	}()
	select {
	case <-waDone:
	case <-ctx.Done():
		zap.L().Warn("notifikasi WA belum selesai saat shutdown")
	}

	database.Close()
	return nil
}
