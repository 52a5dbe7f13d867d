package observability

import (
	"strings"

	"github.com/smallbiznis/invoicely/internal/config"
)

// Config is the part of the application settings the logger, tracer and
// meter providers read.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	LogLevel  string
	LogFormat string
	SQLLevel  string

	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	OtelSamplingRatio    float64
}

func LoadConfig(cfg config.Config) Config {
	service := strings.TrimSpace(cfg.AppName)
	if service == "" {
		service = "invoicely"
	}
	level := cfg.Log.Level
	if level == "" {
		level = "info"
	}
	protocol := cfg.Otel.Protocol
	if protocol == "" {
		protocol = "grpc"
	}
	return Config{
		ServiceName:          service,
		Environment:          cfg.Environment,
		Version:              cfg.AppVersion,
		LogLevel:             level,
		LogFormat:            cfg.Log.Format,
		SQLLevel:             cfg.Log.SQLLevel,
		OtelEnabled:          cfg.Otel.Enabled,
		OtelExporterEndpoint: cfg.Otel.Endpoint,
		OtelExporterProtocol: protocol,
		OtelSamplingRatio:    cfg.Otel.SamplingRatio,
	}
}

// Debug is true at debug level and in development environments.
func (c Config) Debug() bool {
	if c.LogLevel == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	default:
		return false
	}
}
