package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Service holds general service settings
type Service struct {
	Environment string `envconfig:"SERVICE_ENVIRONMENT" required:"true"`
	APIPort     string `envconfig:"SERVICE_API_PORT" default:"8080"`
	Host        string `envconfig:"SERVICE_HOST" default:"localhost:8080"`
}

// SQS holds queue settings
type SQS struct {
	Endpoint string `envconfig:"SQS_ENDPOINT"`
	QueueURL string `envconfig:"SQS_QUEUE_URL" required:"true"`
	Region   string `envconfig:"SQS_REGION" required:"true"`
}

// ClickHouse holds event store settings
type ClickHouse struct {
	Host            string `envconfig:"CLICKHOUSE_HOST" required:"true"`
	Port            string `envconfig:"CLICKHOUSE_PORT" required:"true"`
	Database        string `envconfig:"CLICKHOUSE_DB" required:"true"`
	User            string `envconfig:"CLICKHOUSE_USER" default:""`
	Password        string `envconfig:"CLICKHOUSE_PASSWORD" default:""`
	UseTLS          bool   `envconfig:"CLICKHOUSE_USE_TLS" default:"false"`
	MaxOpenConns    int    `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"5"`
	MaxIdleConns    int    `envconfig:"CLICKHOUSE_MAX_IDLE_CONNS" default:"2"`
	ConnMaxLifetime int    `envconfig:"CLICKHOUSE_CONN_MAX_LIFETIME_SEC" default:"3600"`
}

// Valkey holds idempotency cache settings
type Valkey struct {
	Host                string `envconfig:"VALKEY_HOST" required:"true"`
	Port                string `envconfig:"VALKEY_PORT" required:"true"`
	IdempotencyEnabled  bool   `envconfig:"VALKEY_IDEMPOTENCY_ENABLED" default:"true"`
	IdempotencyFailOpen bool   `envconfig:"VALKEY_IDEMPOTENCY_FAIL_OPEN" default:"true"`
	IdempotencyTTLSec   int    `envconfig:"VALKEY_IDEMPOTENCY_TTL_SEC" default:"86400"`
}

// Consumer holds consumer pipeline settings
type Consumer struct {
	BatchSizeMin    int    `envconfig:"CONSUMER_BATCH_SIZE_MIN" default:"100"`
	BatchSizeMax    int    `envconfig:"CONSUMER_BATCH_SIZE_MAX" default:"2000"`
	BatchTimeoutSec int    `envconfig:"CONSUMER_BATCH_TIMEOUT_SEC" default:"10"`
	HealthCheckPort string `envconfig:"CONSUMER_HEALTH_CHECK_PORT" default:"8081"`
}

// Reporting holds summary computation settings
type Reporting struct {
	// Timezone used for hour-of-day and calendar-day bucketing, IANA name.
	Timezone string `envconfig:"REPORTING_TIMEZONE" default:"UTC"`
}

// Session holds visitor session settings
type Session struct {
	TTLMin int `envconfig:"SESSION_TTL_MIN" default:"30"`
}

type Config struct {
	Service    Service
	SQS        SQS
	ClickHouse ClickHouse
	Valkey     Valkey
	Consumer   Consumer
	Reporting  Reporting
	Session    Session
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
