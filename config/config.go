package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Clinic   ClinicConfig
	Stripe   StripeConfig
	SendGrid SendGridConfig
}

type AppConfig struct {
	Port            string
	Env             string
	LogLevel        string
	PublicBaseURL   string
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// ClinicConfig holds the business settings shared by the consultation and payment flows.
type ClinicConfig struct {
	VideoDomain string
	DefaultFee  decimal.Decimal
	Currency    string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	DryRun        bool
}

type SendGridConfig struct {
	APIKey       string
	FromEmail    string
	FromName     string
	SupportEmail string
}

const (
	DefaultVideoDomain = "meet.jit.si"
	DefaultCurrency    = "EUR"
	DefaultFee         = "50.00"
)

// LoadConfigFrom reads configuration from the given env file; a missing file is not an error.
func LoadConfigFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 30 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(v.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	shutdownTimeout, err := time.ParseDuration(v.GetString("APP_SHUTDOWN_TIMEOUT"))
	if err != nil || shutdownTimeout <= 0 {
		shutdownTimeout = 15 * time.Second
	}

	fee, err := decimal.NewFromString(v.GetString("CLINIC_DEFAULT_FEE"))
	if err != nil {
		return nil, fmt.Errorf("invalid CLINIC_DEFAULT_FEE: %w", err)
	}
	if !fee.IsPositive() {
		return nil, fmt.Errorf("invalid CLINIC_DEFAULT_FEE: must be positive, got %s", fee)
	}

	videoDomain := strings.TrimSpace(v.GetString("VIDEO_DOMAIN"))
	if videoDomain == "" {
		videoDomain = DefaultVideoDomain
	}

	config := &Config{
		App: AppConfig{
			Port:            v.GetString("APP_PORT"),
			Env:             v.GetString("APP_ENV"),
			LogLevel:        v.GetString("LOG_LEVEL"),
			PublicBaseURL:   strings.TrimRight(v.GetString("APP_PUBLIC_BASE_URL"), "/"),
			ShutdownTimeout: shutdownTimeout,
		},
		DB: DBConfig{
			Host:        v.GetString("DB_HOST"),
			Port:        v.GetString("DB_PORT"),
			User:        v.GetString("DB_USER"),
			Password:    v.GetString("DB_PASSWORD"),
			Name:        v.GetString("DB_NAME"),
			SSLMode:     v.GetString("DB_SSLMODE"),
			AutoMigrate: v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        v.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Clinic: ClinicConfig{
			VideoDomain: videoDomain,
			DefaultFee:  fee.Round(2),
			Currency:    strings.ToUpper(v.GetString("CLINIC_CURRENCY")),
		},
		Stripe: StripeConfig{
			SecretKey:     v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret: v.GetString("STRIPE_WEBHOOK_SECRET"),
			SuccessURL:    v.GetString("STRIPE_SUCCESS_URL"),
			CancelURL:     v.GetString("STRIPE_CANCEL_URL"),
			DryRun:        v.GetBool("STRIPE_DRY_RUN"),
		},
		SendGrid: SendGridConfig{
			APIKey:       v.GetString("SENDGRID_API_KEY"),
			FromEmail:    v.GetString("SENDGRID_FROM_EMAIL"),
			FromName:     v.GetString("SENDGRID_FROM_NAME"),
			SupportEmail: v.GetString("SENDGRID_SUPPORT_EMAIL"),
		},
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("VIDEO_DOMAIN", DefaultVideoDomain)
	v.SetDefault("CLINIC_DEFAULT_FEE", DefaultFee)
	v.SetDefault("CLINIC_CURRENCY", DefaultCurrency)
	v.SetDefault("SENDGRID_FROM_EMAIL", "noreply@clinic.example")
	v.SetDefault("SENDGRID_FROM_NAME", "Telemedicine Clinic")
	v.SetDefault("SENDGRID_SUPPORT_EMAIL", "support@clinic.example")
}
