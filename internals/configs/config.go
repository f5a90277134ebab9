package configs

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// AppConfig berisi semua konfigurasi yang dibaca dari ENV.
type AppConfig struct {
	Port        string
	Debug       bool
	Environment string

	JWTSecret      string
	AccessTokenTTL time.Duration
	GoogleClientID string

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string
	DBSSLMode  string

	StorageDriver          string // supabase | oss | b2
	SupabaseProjectURL     string
	SupabaseServiceRoleKey string
	SupabaseBucket         string
	OSSEndpoint            string
	OSSAccessKey           string
	OSSSecretKey           string
	OSSBucket              string
	OSSPublicBaseURL       string
	B2AccountID            string
	B2AppKey               string
	B2Bucket               string
	B2PublicBaseURL        string

	MidtransServerKey string
	MidtransUseProd   bool

	WAGatewayURL     string
	WAGatewayToken   string
	WAConcurrency    int
	WARequestTimeout time.Duration

	SchoolName           string
	RegistrationPrefix   string
	CorsOrigins          []string
	BlacklistTTLDays     int
	PaymentGatewayExpiry time.Duration
	CronBlacklistCleanup string
	CronPaymentExpiry    string
	MaxUploadBytes       int64
	DefaultPageSize      int
	SeedAdminEmail       string
	SeedAdminPassword    string
}

var App AppConfig

// =======================
// ENV LOADER
// =======================
func LoadEnv() {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			zap.L().Info("⚠️ Tidak menemukan .env file, menggunakan ENV dari sistem")
		} else {
			zap.L().Info("✅ .env file berhasil dimuat!")
		}
	} else {
		zap.L().Info("🚀 Running in Railway, menggunakan ENV dari sistem")
	}

	App = FromEnv()

	if App.JWTSecret == "" {
		zap.L().Warn("❌ JWT_SECRET belum diset!")
	}
	if App.GoogleClientID == "" {
		zap.L().Info("GOOGLE_CLIENT_ID belum diset, login Google nonaktif")
	}
	if App.MidtransServerKey == "" {
		zap.L().Info("MIDTRANS_SERVER_KEY belum diset, checkout gateway nonaktif")
	}
}

// FromEnv membaca konfigurasi dari ENV proses saat ini tanpa efek samping.
func FromEnv() AppConfig {
	return AppConfig{
		Port:        GetEnv("PORT", "3000"),
		Debug:       GetEnvBool("APP_DEBUG", false),
		Environment: GetEnv("RAILWAY_ENVIRONMENT", "local"),

		JWTSecret:      GetEnv("JWT_SECRET"),
		AccessTokenTTL: GetEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		GoogleClientID: GetEnv("GOOGLE_CLIENT_ID"),

		DBUser:     GetEnv("DB_USER"),
		DBPassword: GetEnv("DB_PASSWORD"),
		DBHost:     GetEnv("DB_HOST"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBName:     GetEnv("DB_NAME"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "require"),

		StorageDriver:          strings.ToLower(GetEnv("STORAGE_DRIVER", "supabase")),
		SupabaseProjectURL:     strings.TrimRight(GetEnv("SUPABASE_PROJECT_URL"), "/"),
		SupabaseServiceRoleKey: GetEnv("SUPABASE_SERVICE_ROLE_KEY"),
		SupabaseBucket:         GetEnv("SUPABASE_BUCKET", "ppdb"),
		OSSEndpoint:            GetEnv("ALI_OSS_ENDPOINT"),
		OSSAccessKey:           GetEnv("ALI_OSS_ACCESS_KEY"),
		OSSSecretKey:           GetEnv("ALI_OSS_SECRET_KEY"),
		OSSBucket:              GetEnv("ALI_OSS_BUCKET"),
		OSSPublicBaseURL:       strings.TrimRight(GetEnv("ALI_OSS_PUBLIC_BASE"), "/"),
		B2AccountID:            GetEnv("B2_ACCOUNT_ID"),
		B2AppKey:               GetEnv("B2_APP_KEY"),
		B2Bucket:               GetEnv("B2_BUCKET"),
		B2PublicBaseURL:        strings.TrimRight(GetEnv("B2_PUBLIC_BASE"), "/"),

		MidtransServerKey: GetEnv("MIDTRANS_SERVER_KEY"),
		MidtransUseProd:   GetEnvBool("MIDTRANS_USE_PROD", false),

		WAGatewayURL:     GetEnv("WA_GATEWAY_URL"),
		WAGatewayToken:   GetEnv("WA_GATEWAY_TOKEN"),
		WAConcurrency:    GetEnvInt("WA_CONCURRENCY", 4),
		WARequestTimeout: GetEnvDuration("WA_REQUEST_TIMEOUT", 10*time.Second),

		SchoolName:           GetEnv("SCHOOL_NAME", "Sekolah"),
		RegistrationPrefix:   GetEnv("REGISTRATION_PREFIX", "PPDB"),
		CorsOrigins:          splitCSV(GetEnv("CORS_ORIGINS", "http://localhost:5173")),
		BlacklistTTLDays:     GetEnvInt("TOKEN_BLACKLIST_TTL_DAYS", 7),
		PaymentGatewayExpiry: GetEnvDuration("PAYMENT_GATEWAY_EXPIRY", 24*time.Hour),
		CronBlacklistCleanup: GetEnv("CRON_BLACKLIST_CLEANUP", "15 2 * * *"),
		CronPaymentExpiry:    GetEnv("CRON_PAYMENT_EXPIRY", "@hourly"),
		MaxUploadBytes:       int64(GetEnvInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		DefaultPageSize:      GetEnvInt("DEFAULT_PAGE_SIZE", 20),
		SeedAdminEmail:       GetEnv("SEED_ADMIN_EMAIL"),
		SeedAdminPassword:    GetEnv("SEED_ADMIN_PASSWORD"),
	}
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if (!exists || strings.TrimSpace(value) == "") && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return strings.TrimSpace(value)
}

func GetEnvInt(key string, def int) int {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func GetEnvBool(key string, def bool) bool {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		switch strings.ToLower(v) {
		case "yes", "on", "y":
			return true
		case "no", "off", "n":
			return false
		}
		return def
	}
	return b
}

// GetEnvDuration menerima format time.ParseDuration ("90m", "24h").
func GetEnvDuration(key string, def time.Duration) time.Duration {
	v := GetEnv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
