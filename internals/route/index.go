// file: internals/route/index.go
package routes

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ppdb_backend/internals/configs"
	"ppdb_backend/internals/constants"
	routeDetails "ppdb_backend/internals/route/details"

	announcementController "ppdb_backend/internals/features/ppdb/announcements/controller"
	paymentController "ppdb_backend/internals/features/ppdb/payments/controller"
	paymentRepo "ppdb_backend/internals/features/ppdb/payments/repository"
	paymentService "ppdb_backend/internals/features/ppdb/payments/service"
	fileController "ppdb_backend/internals/features/ppdb/registrant_files/controller"
	fileRepo "ppdb_backend/internals/features/ppdb/registrant_files/repository"
	fileService "ppdb_backend/internals/features/ppdb/registrant_files/service"
	registrantController "ppdb_backend/internals/features/ppdb/registrants/controller"
	registrantRepo "ppdb_backend/internals/features/ppdb/registrants/repository"
	registrantService "ppdb_backend/internals/features/ppdb/registrants/service"
	authController "ppdb_backend/internals/features/users/auth/controller"
	authRepo "ppdb_backend/internals/features/users/auth/repository"
	authService "ppdb_backend/internals/features/users/auth/service"
	waController "ppdb_backend/internals/features/whatsapp/controller"
	waRepo "ppdb_backend/internals/features/whatsapp/repository"
	waService "ppdb_backend/internals/features/whatsapp/service"

	"ppdb_backend/internals/helpers/storage"
	authMiddleware "ppdb_backend/internals/middlewares/auth"
)

var startTime time.Time

var ErrMissingJWTSecret = errors.New("JWT_SECRET belum diset, route terproteksi tidak bisa dipasang")

// App menyimpan service yang dibutuhkan main (scheduler & shutdown).
type App struct {
	AuthRepo authRepo.Repository
	Payments *paymentService.Service
	WhatsApp *waService.Service
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg configs.AppConfig) (*App, error) {
	startTime = time.Now()
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		zap.L().Error("❌ serve dibatalkan", zap.Error(ErrMissingJWTSecret))
		return nil, ErrMissingJWTSecret
	}

	store, err := storage.New(cfg)
	if err != nil {
		return nil, err
	}

	// ===================== WHATSAPP (notifier semua modul) =====================
	var sender waService.Sender
	if cfg.WAGatewayURL != "" {
		sender = waService.NewGatewaySender(cfg.WAGatewayURL, cfg.WAGatewayToken, cfg.WARequestTimeout)
	} else {
		zap.L().Info("WA_GATEWAY_URL kosong, notifikasi WhatsApp hanya berupa link wa.me")
	}
	waRepository := waRepo.New(db)
	wa := waService.New(waRepository, waService.NewDispatcher(sender, cfg.WAConcurrency, waRepository), cfg.SchoolName)

	// ===================== PPDB =====================
	registrants := registrantRepo.New(db, cfg.RegistrationPrefix)
	regSvc := registrantService.New(registrants, wa)

	var gateway paymentService.Gateway
	if cfg.MidtransServerKey != "" {
		gateway = paymentService.NewMidtransGateway(cfg.MidtransServerKey, cfg.MidtransUseProd)
	}
	paySvc := paymentService.New(paymentRepo.New(db), registrants, store, gateway, wa, cfg.MidtransServerKey)
	regSvc.Payments = paySvc

	fileSvc := fileService.New(fileRepo.New(db), registrants, store, cfg.MaxUploadBytes)

	ppdb := routeDetails.PPDBControllers{
		Registrants:   registrantController.NewRegistrantController(regSvc),
		Files:         fileController.NewFileController(fileSvc),
		Payments:      paymentController.NewPaymentController(paySvc, cfg.MaxUploadBytes),
		Announcements: announcementController.NewAnnouncementController(db, store, cfg.MaxUploadBytes),
	}

	// ===================== AUTH =====================
	users := authRepo.New(db)
	authSvc := authService.New(users, registrants, wa, authService.Config{
		Secret:         cfg.JWTSecret,
		AccessTTL:      cfg.AccessTokenTTL,
		GoogleClientID: cfg.GoogleClientID,
	})
	authCtrl := authController.NewAuthController(authSvc)

	jwt := authMiddleware.AuthJWT(authMiddleware.AuthJWTOpts{
		Secret:              cfg.JWTSecret,
		Guard:               authMiddleware.NewDBGuard(db),
		AllowCookieFallback: true,
	})

	zap.L().Info("[INFO] Setting up AuthRoutes...")
	BaseRoutes(app, db, cfg)
	routeDetails.AuthRoutes(app, authCtrl, jwt)

	// ===================== GROUPS =====================
	public := app.Group("/api/public")

	user := app.Group("/api/u",
		jwt,
		authMiddleware.OnlyRoles(constants.RoleErrorRegistrant("dashboard pendaftar"), constants.RegistrantOnly...),
	)

	admin := app.Group("/api/a",
		jwt,
		authMiddleware.OnlyRoles("Forbidden: khusus staf PPDB", constants.StaffRoles...),
	)

	// ===================== MOUNT ROUTES =====================
	zap.L().Info("[INFO] Mounting Home & Master routes...")
	routeDetails.HomePublicRoutes(public, db, cfg.SchoolName)
	routeDetails.MasterPublicRoutes(public, db)
	routeDetails.MasterAdminRoutes(admin, db)

	zap.L().Info("[INFO] Mounting PPDB routes...")
	routeDetails.PPDBPublicRoutes(public, ppdb)
	routeDetails.PPDBUserRoutes(user, ppdb)
	routeDetails.PPDBAdminRoutes(admin, ppdb)

	zap.L().Info("[INFO] Mounting WhatsApp & User admin routes...")
	routeDetails.WhatsAppAdminRoutes(admin, waController.NewWhatsAppController(wa))
	routeDetails.UserAdminRoutes(admin, authCtrl)

	return &App{AuthRepo: users, Payments: paySvc, WhatsApp: wa}, nil
}
