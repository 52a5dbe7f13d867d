package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/smallbiznis/invoicely/pkg/db"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(Load),
	fx.Provide(func(cfg Config) db.Config { return cfg.DB }),
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	Log  LogConfig
	Otel OtelConfig

	DB db.Config

	Invoice InvoiceConfig
	Lock    LockConfig
	PDF     PDFConfig

	// Business seeds the default profile on first start when BusinessName is set.
	Business BusinessConfig
}

type LogConfig struct {
	Level    string
	Format   string
	SQLLevel string
}

// OtelConfig drives both the trace and the metric exporters.
type OtelConfig struct {
	Enabled       bool
	Endpoint      string
	Protocol      string
	SamplingRatio float64
}

type InvoiceConfig struct {
	Prefix          string
	NumberPeriod    string
	MaxAttempts     int
	DefaultCurrency string
}

type LockConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
}

func (c LockConfig) Enabled() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}

type PDFConfig struct {
	FormNumber string
	Revision   string
}

type BusinessConfig struct {
	Name            string
	Email           string
	Role            string
	Address         string
	City            string
	StateOrProvince string
	Country         string
	PostalCode      string
	Phone           string
	GSTHSTNumber    string
}

// Load loads configuration from environment variables, a .env file and an
// optional config file named by INVOICELY_CONFIG.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	// The standard OTel variable wins over the short form.
	_ = v.BindEnv("OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTLP_ENDPOINT")

	if path := strings.TrimSpace(v.GetString("INVOICELY_CONFIG")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_SERVICE", "invoicely")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_SQL_LEVEL", "warn")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")
	v.SetDefault("OTEL_SAMPLING_RATIO", 0.1)

	v.SetDefault("DATABASE_TYPE", db.TypeSQLite)
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "invoicely")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_PASSWORD", "")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_PATH", "invoices.db")
	v.SetDefault("DATABASE_MAX_IDLE_CONN", 5)
	v.SetDefault("DATABASE_MAX_OPEN_CONN", 20)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DATABASE_CONN_MAX_IDLE_TIME", "5m")
	v.SetDefault("DATABASE_METRICS_ENABLED", true)
	v.SetDefault("DATABASE_TRACING_ENABLED", true)

	v.SetDefault("INVOICE_PREFIX", "INV")
	v.SetDefault("INVOICE_NUMBER_PERIOD", "month")
	v.SetDefault("INVOICE_NUMBER_MAX_ATTEMPTS", 3)
	v.SetDefault("INVOICE_DEFAULT_CURRENCY", "CAD")

	v.SetDefault("LOCK_REDIS_ADDR", "")
	v.SetDefault("LOCK_REDIS_PASSWORD", "")
	v.SetDefault("LOCK_REDIS_DB", 0)
	v.SetDefault("LOCK_TTL", "10s")

	v.SetDefault("PDF_FORM_NUMBER", "")
	v.SetDefault("PDF_REVISION", "")

	v.SetDefault("BUSINESS_NAME", "")
	v.SetDefault("BUSINESS_EMAIL", "")
	v.SetDefault("BUSINESS_ROLE", "")
	v.SetDefault("BUSINESS_ADDRESS", "")
	v.SetDefault("BUSINESS_CITY", "")
	v.SetDefault("BUSINESS_STATEORPROVINCE", "")
	v.SetDefault("BUSINESS_COUNTRY", "")
	v.SetDefault("BUSINESS_POSTAL_CODE", "")
	v.SetDefault("BUSINESS_PHONE", "")
	v.SetDefault("BUSINESS_GST_HST_NUMBER", "")
}

func fromViper(v *viper.Viper) Config {
	return Config{
		AppName:     trimmed(v, "APP_SERVICE"),
		AppVersion:  trimmed(v, "APP_VERSION"),
		Environment: trimmed(v, "ENVIRONMENT"),
		HTTPAddr:    trimmed(v, "HTTP_ADDR"),
		Log: LogConfig{
			Level:    strings.ToLower(trimmed(v, "LOG_LEVEL")),
			Format:   strings.ToLower(trimmed(v, "LOG_FORMAT")),
			SQLLevel: strings.ToLower(trimmed(v, "LOG_SQL_LEVEL")),
		},
		Otel: OtelConfig{
			Enabled:       v.GetBool("OTEL_ENABLED"),
			Endpoint:      trimmed(v, "OTLP_ENDPOINT"),
			Protocol:      strings.ToLower(trimmed(v, "OTEL_EXPORTER_OTLP_PROTOCOL")),
			SamplingRatio: v.GetFloat64("OTEL_SAMPLING_RATIO"),
		},
		DB: db.Config{
			Type:            strings.ToLower(trimmed(v, "DATABASE_TYPE")),
			Host:            trimmed(v, "DATABASE_HOST"),
			Port:            trimmed(v, "DATABASE_PORT"),
			Name:            trimmed(v, "DATABASE_NAME"),
			User:            trimmed(v, "DATABASE_USER"),
			Password:        v.GetString("DATABASE_PASSWORD"),
			SSLMode:         trimmed(v, "DATABASE_SSLMODE"),
			Path:            trimmed(v, "DATABASE_PATH"),
			MaxIdleConn:     v.GetInt("DATABASE_MAX_IDLE_CONN"),
			MaxOpenConn:     v.GetInt("DATABASE_MAX_OPEN_CONN"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("DATABASE_CONN_MAX_IDLE_TIME"),
			MetricsEnabled:  v.GetBool("DATABASE_METRICS_ENABLED"),
			TracingEnabled:  v.GetBool("DATABASE_TRACING_ENABLED"),
		},
		Invoice: InvoiceConfig{
			Prefix:          trimmed(v, "INVOICE_PREFIX"),
			NumberPeriod:    strings.ToLower(trimmed(v, "INVOICE_NUMBER_PERIOD")),
			MaxAttempts:     v.GetInt("INVOICE_NUMBER_MAX_ATTEMPTS"),
			DefaultCurrency: strings.ToUpper(trimmed(v, "INVOICE_DEFAULT_CURRENCY")),
		},
		Lock: LockConfig{
			RedisAddr:     trimmed(v, "LOCK_REDIS_ADDR"),
			RedisPassword: v.GetString("LOCK_REDIS_PASSWORD"),
			RedisDB:       v.GetInt("LOCK_REDIS_DB"),
			TTL:           v.GetDuration("LOCK_TTL"),
		},
		PDF: PDFConfig{
			FormNumber: trimmed(v, "PDF_FORM_NUMBER"),
			Revision:   trimmed(v, "PDF_REVISION"),
		},
		Business: BusinessConfig{
			Name:            trimmed(v, "BUSINESS_NAME"),
			Email:           trimmed(v, "BUSINESS_EMAIL"),
			Role:            trimmed(v, "BUSINESS_ROLE"),
			Address:         trimmed(v, "BUSINESS_ADDRESS"),
			City:            trimmed(v, "BUSINESS_CITY"),
			StateOrProvince: trimmed(v, "BUSINESS_STATEORPROVINCE"),
			Country:         trimmed(v, "BUSINESS_COUNTRY"),
			PostalCode:      trimmed(v, "BUSINESS_POSTAL_CODE"),
			Phone:           trimmed(v, "BUSINESS_PHONE"),
			GSTHSTNumber:    trimmed(v, "BUSINESS_GST_HST_NUMBER"),
		},
	}
}

func trimmed(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
