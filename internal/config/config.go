/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Database backend selection.
type DatabaseBackend string

const (
	DatabasePostgres DatabaseBackend = "postgres"
	DatabaseMySQL    DatabaseBackend = "mysql"
	DatabaseSQLite   DatabaseBackend = "sqlite"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "MATCHDAY_"

// Config covers process level configuration read from environment variables.
// Schedule parameters are not part of it; they come from parameter files.
type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTPBind    string `env:"HTTP_BIND" envDefault:"0.0.0.0"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	MetricsBind string `env:"METRICS_BIND" envDefault:"127.0.0.1:9000"`

	DBBackend DatabaseBackend `env:"DB_BACKEND" envDefault:"sqlite"`
	DBDSN     string          `env:"DB_DSN" envDefault:"matchday.db"`

	// Redis plan cache; empty address disables caching.
	RedisAddr     string        `env:"REDIS_ADDR"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	CacheTTL      time.Duration `env:"CACHE_TTL" envDefault:"30m"`

	// NATS event mirror; empty URL keeps events in process.
	NATSURL   string `env:"NATS_URL"`
	NATSToken string `env:"NATS_TOKEN"`

	// Sweep report storage. Reports go to S3 when a bucket is set, else to ReportDir.
	ReportDir         string `env:"REPORT_DIR" envDefault:"./reports"`
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3UsePathStyle    bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4317"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`

	SweepWorkers  int `env:"SWEEP_WORKERS" envDefault:"4"`
	LogBufferSize int `env:"LOG_BUFFER_SIZE" envDefault:"5000"`
}

// Load reads environment variables, applies defaults, and validates the result.
func Load() (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field combinations the parser cannot.
func (c *Config) Validate() error {
	var problems []string

	switch c.DBBackend {
	case DatabasePostgres, DatabaseMySQL, DatabaseSQLite:
	default:
		problems = append(problems, fmt.Sprintf("unsupported database backend %q", c.DBBackend))
	}
	if strings.TrimSpace(c.DBDSN) == "" {
		problems = append(problems, EnvPrefix+"DB_DSN is required")
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		problems = append(problems, fmt.Sprintf("invalid http port %d", c.HTTPPort))
	}
	if c.SweepWorkers < 1 {
		problems = append(problems, "sweep workers must be at least 1")
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		problems = append(problems, "tracing sample rate must be within [0,1]")
	}
	if (c.S3AccessKeyID == "") != (c.S3SecretAccessKey == "") {
		problems = append(problems, "S3 access key id and secret must be set together")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// HTTPAddr returns the listen address for the API server.
func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPBind, c.HTTPPort)
}
