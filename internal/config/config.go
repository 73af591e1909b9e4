package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string
	DBDebug     bool
	Port        string
	AppURL      string
	AppEnv      string
	// DevPreview enables exporting the live, unpaid document.
	DevPreview  bool

	DownloadTokenSecret string

	LemonSqueezyAPIKey        string
	LemonSqueezyWebhookSecret string
	LemonSqueezyAPIBase       string
	LemonSqueezyCheckoutURL   string

	EmailService      string
	ResendAPIKey      string
	ResendFromEmail   string
	SendGridAPIKey    string
	SendGridFromEmail string

	AutosaveDelay     time.Duration
	VendorTimeout     time.Duration
	VendorMaxRetries  int
	StorageQuotaBytes int
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: ignoring .env: %v", err)
	}

	appEnv := getEnv("APP_ENV", "production")

	return &Config{
		AppEnv:                    appEnv,
		DevPreview:                appEnv == "development",
		DatabaseURL:               getEnv("DATABASE_URL", "blueprint.db"),
		DBDebug:                   getBool("DB_DEBUG", false),
		Port:                      getEnv("PORT", "8080"),
		AppURL:                    getEnv("APP_URL", "http://localhost:8080"),
		DownloadTokenSecret:       getEnv("DOWNLOAD_TOKEN_SECRET", "your-secret-key-change-in-production"),
		LemonSqueezyAPIKey:        getEnv("LEMON_SQUEEZY_API_KEY", ""),
		LemonSqueezyWebhookSecret: getEnv("LEMON_SQUEEZY_WEBHOOK_SECRET", ""),
		LemonSqueezyAPIBase:       getEnv("LEMON_SQUEEZY_API_BASE", "https://api.lemonsqueezy.com/v1"),
		LemonSqueezyCheckoutURL:   getEnv("LEMON_SQUEEZY_CHECKOUT_URL", "https://yourstorename.lemonsqueezy.com/checkout/buy/YOUR-PRODUCT-ID"),
		EmailService:              getEnv("EMAIL_SERVICE", "resend"),
		ResendAPIKey:              getEnv("RESEND_API_KEY", ""),
		ResendFromEmail:           getEnv("RESEND_FROM_EMAIL", "noreply@yearinreview.online"),
		SendGridAPIKey:            getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail:         getEnv("SENDGRID_FROM_EMAIL", "noreply@yearinreview.online"),
		AutosaveDelay:             getDuration("AUTOSAVE_DELAY", 2*time.Second),
		VendorTimeout:             getDuration("VENDOR_TIMEOUT", 15*time.Second),
		VendorMaxRetries:          getInt("VENDOR_MAX_RETRIES", 3),
		StorageQuotaBytes:         getInt("STORAGE_QUOTA_BYTES", 5*1024*1024),
	}
}

// TargetYear is the year being planned for: next year once Q4 starts.
func TargetYear(now time.Time) int {
	if now.Month() >= time.October {
		return now.Year() + 1
	}
	return now.Year()
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

func getBool(key string, fallback bool) bool {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Printf("config: %s=%q is not a duration, using %s", key, raw, fallback)
		return fallback
	}
	return d
}
