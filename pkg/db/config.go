package db

import "time"

type Config struct {
	Type            string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	Path            string
	MaxIdleConn     int
	MaxOpenConn     int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration

	// MetricsEnabled registers the gorm prometheus collector on the default registry.
	MetricsEnabled bool
	// TracingEnabled installs the otelgorm plugin.
	TracingEnabled bool
}
