package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Emission modes.
const (
	EmissionModeDirect = "direct"
	EmissionModeOutbox = "outbox"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Emission   EmissionConfig   `mapstructure:"emission"`
	Dedup      DedupConfig      `mapstructure:"dedup"`
	DeadLetter DeadLetterConfig `mapstructure:"dead_letter"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	CardData   CardDataConfig   `mapstructure:"card_data"`
	Tracing    TracingConfig    `mapstructure:"tracing"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host           string  `mapstructure:"host"`
	Port           int     `mapstructure:"port"`
	Mode           string  `mapstructure:"mode"`             // debug, release, test
	RateLimit      float64 `mapstructure:"rate_limit"`       // ops API requests per second per client, 0 = unlimited
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type KafkaConfig struct {
	Brokers          []string          `mapstructure:"brokers"`
	ClientID         string            `mapstructure:"client_id"`
	ConsumerGroup    string            `mapstructure:"consumer_group"`
	RecordsPerPoll   int               `mapstructure:"records_per_poll"`
	MaxRedeliveries  int               `mapstructure:"max_redeliveries"`
	EventSource      string            `mapstructure:"event_source"`     // ce_source of outbound events
	MetricsNamespace string            `mapstructure:"metrics_namespace"` // kprom namespace
	Topics           map[string]string `mapstructure:"topics"`           // channel -> topic
}

// Topic resolves the topic backing a channel, defaulting to the channel name.
func (k KafkaConfig) Topic(channel string) string {
	if t, ok := k.Topics[channel]; ok && t != "" {
		return t
	}
	return channel
}

type SettlementConfig struct {
	BaseURL            string        `mapstructure:"base_url"`
	Timeout            time.Duration `mapstructure:"timeout"`
	RateLimit          float64       `mapstructure:"rate_limit"` // calls per second, 0 = unlimited
	Burst              int           `mapstructure:"burst"`
	RefundsAutoApprove bool          `mapstructure:"refunds_auto_approve"`
}

type EmissionConfig struct {
	Mode           string        `mapstructure:"mode"` // direct, outbox
	RelayInterval  time.Duration `mapstructure:"relay_interval"`
	RelayBatchSize int           `mapstructure:"relay_batch_size"`
}

type DedupConfig struct {
	CacheEnabled bool          `mapstructure:"cache_enabled"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
}

type DeadLetterConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	List    string `mapstructure:"list"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
	Issuer string        `mapstructure:"issuer"`
}

type CardDataConfig struct {
	EncryptionKey string `mapstructure:"encryption_key"` // 32-byte hex-encoded key for AES-256-GCM
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"` // OTLP gRPC endpoint, empty = disabled
	Insecure    bool    `mapstructure:"insecure"`
	SampleRate  float64 `mapstructure:"sample_rate"`
	ServiceName string  `mapstructure:"service_name"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: TXO_ (Transaction Orchestrator).
// Nested keys use underscore: TXO_DATABASE_HOST, TXO_KAFKA_BROKERS, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.rate_limit", 5)
	v.SetDefault("server.rate_limit_burst", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "transactions")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.client_id", "transaction-orchestrator")
	v.SetDefault("kafka.consumer_group", "transaction-orchestrator")
	v.SetDefault("kafka.records_per_poll", 500)
	v.SetDefault("kafka.max_redeliveries", 5)
	v.SetDefault("kafka.event_source", "paymentic.io/transaction-processing")
	v.SetDefault("kafka.metrics_namespace", "txo")
	v.SetDefault("settlement.base_url", "http://localhost:9000")
	v.SetDefault("settlement.timeout", "10s")
	v.SetDefault("settlement.rate_limit", 50)
	v.SetDefault("settlement.burst", 10)
	v.SetDefault("settlement.refunds_auto_approve", true)
	v.SetDefault("emission.mode", EmissionModeDirect)
	v.SetDefault("emission.relay_interval", "1s")
	v.SetDefault("emission.relay_batch_size", 100)
	v.SetDefault("dedup.cache_enabled", true)
	v.SetDefault("dedup.cache_ttl", "24h")
	v.SetDefault("dead_letter.enabled", true)
	v.SetDefault("dead_letter.list", "dead-letter:inbound-events")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "transaction-orchestrator")
	v.SetDefault("card_data.encryption_key", "")
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("tracing.service_name", "transaction-orchestrator")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: TXO_DATABASE_HOST -> database.host
	v.SetEnvPrefix("TXO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required, env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks settings the process cannot start without.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers: cannot be empty"))
	}
	if c.Kafka.ConsumerGroup == "" {
		errs = append(errs, errors.New("kafka.consumer_group: cannot be empty"))
	}
	if c.Kafka.MaxRedeliveries < 1 {
		errs = append(errs, errors.New("kafka.max_redeliveries: must be at least 1"))
	}
	if c.Settlement.BaseURL == "" {
		errs = append(errs, errors.New("settlement.base_url: cannot be empty"))
	}
	switch c.Emission.Mode {
	case EmissionModeDirect, EmissionModeOutbox:
	default:
		errs = append(errs, fmt.Errorf("emission.mode: unknown mode %q", c.Emission.Mode))
	}
	if c.Emission.Mode == EmissionModeOutbox && c.Emission.RelayBatchSize < 1 {
		errs = append(errs, errors.New("emission.relay_batch_size: must be at least 1"))
	}
	if key, err := hex.DecodeString(c.CardData.EncryptionKey); err != nil || len(key) != 32 {
		errs = append(errs, errors.New("card_data.encryption_key: must be 64 hex characters"))
	}
	return errors.Join(errs...)
}
