// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Record source kinds.
const (
	SourceFile      = "file"
	SourceFirestore = "firestore"
	SourceMongo     = "mongo"
	SourcePostgres  = "postgres"
	SourceAMQP      = "amqp"
)

// State store kinds.
const (
	StateMemory   = "memory"
	StateFile     = "file"
	StateSQLite   = "sqlite"
	StateRedis    = "redis"
	StatePostgres = "postgres"
)

// Export sink kinds.
const (
	ExportDir = "dir"
	ExportS3  = "s3"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Source   SourceConfig
	State    StateConfig
	Export   ExportConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL connection settings, shared by the
// postgres record source and the postgres state store.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 1)
	MinConns int `env:"DB_MIN_CONNS" default:"1"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SourceConfig selects and configures the record source.
type SourceConfig struct {
	// Kind is one of: file, firestore, mongo, postgres, amqp (default: file)
	Kind string `env:"SOURCE_KIND" default:"file"`

	// Collection is the Firestore/Mongo collection or Postgres table holding
	// the vehicle records (default: cars)
	Collection string `env:"SOURCE_COLLECTION" default:"cars"`

	// FilePath is the JSON or CSV dataset for the file source
	FilePath string `env:"SOURCE_FILE" default:"data/cars.json"`

	// Watch re-reads the file when it changes (default: true)
	Watch bool `env:"SOURCE_FILE_WATCH" default:"true"`

	// Debounce coalesces bursts of file change events (default: 500ms)
	Debounce time.Duration `env:"SOURCE_FILE_DEBOUNCE" default:"500ms"`

	// FirestoreProject is the Google Cloud project ID
	FirestoreProject string `env:"FIRESTORE_PROJECT_ID" envAlt:"GOOGLE_CLOUD_PROJECT"`

	// FirestoreCredentials is an optional service account key file
	FirestoreCredentials string `env:"FIRESTORE_CREDENTIALS_FILE" envAlt:"GOOGLE_APPLICATION_CREDENTIALS"`

	// MongoURI is the MongoDB connection string
	MongoURI string `env:"MONGO_URI"`

	// MongoDatabase is the MongoDB database name (default: firehawk)
	MongoDatabase string `env:"MONGO_DATABASE" default:"firehawk"`

	// PollSchedule is the cron spec for polling sources (default: @every 30s)
	PollSchedule string `env:"SOURCE_POLL_SCHEDULE" default:"@every 30s"`

	// AMQPURL is the RabbitMQ connection string
	AMQPURL string `env:"AMQP_URL" envAlt:"RABBITMQ_URL"`

	// AMQPExchange is the fanout exchange carrying snapshots (default: cars.snapshots)
	AMQPExchange string `env:"SOURCE_AMQP_EXCHANGE" default:"cars.snapshots"`
}

// StateConfig selects and configures where the filter selection is kept.
type StateConfig struct {
	// Kind is one of: memory, file, sqlite, redis, postgres (default: sqlite)
	Kind string `env:"STATE_KIND" default:"sqlite"`

	// Key is the slot name the filter state is stored under
	Key string `env:"STATE_KEY" default:"carDatabase_filters"`

	// FilePath is the JSON file for the file store (default: data/state.json)
	FilePath string `env:"STATE_FILE" default:"data/state.json"`

	// SQLitePath is the database file for the sqlite store (default: data/state.db)
	SQLitePath string `env:"STATE_SQLITE_PATH" default:"data/state.db"`

	// RedisAddr is the Redis host:port (default: localhost:6379)
	RedisAddr string `env:"REDIS_ADDR" default:"localhost:6379"`

	// RedisPassword is the optional Redis password
	RedisPassword string `env:"REDIS_PASSWORD"`

	// RedisDB is the Redis database number (default: 0)
	RedisDB int `env:"REDIS_DB" default:"0"`

	// Table is the key/value table for the postgres store (default: ui_state)
	Table string `env:"STATE_PG_TABLE" default:"ui_state"`
}

// ExportConfig configures where CSV exports are written.
type ExportConfig struct {
	// Kind is one of: dir, s3 (default: dir)
	Kind string `env:"EXPORT_KIND" default:"dir"`

	// Dir is the output directory for the dir sink (default: exports)
	Dir string `env:"EXPORT_DIR" default:"exports"`

	// BaseName prefixes export file names (default: car-database)
	BaseName string `env:"EXPORT_BASE_NAME" default:"car-database"`

	// S3Bucket is the destination bucket for the s3 sink
	S3Bucket string `env:"EXPORT_S3_BUCKET"`

	// S3Region is the bucket region (default: us-east-1)
	S3Region string `env:"EXPORT_S3_REGION" envAlt:"AWS_REGION" default:"us-east-1"`

	// S3Prefix is an optional key prefix inside the bucket
	S3Prefix string `env:"EXPORT_S3_PREFIX"`

	// MaxConcurrent is the maximum number of sink exports running at once (default: 2)
	MaxConcurrent int `env:"EXPORT_MAX_CONCURRENT" default:"2"`

	// MaxWait is how long an export waits for a free slot (default: 10s)
	MaxWait time.Duration `env:"EXPORT_MAX_WAIT" default:"10s"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// UsesPostgres reports whether any component needs the database pool.
func (c *Config) UsesPostgres() bool {
	return c.Source.Kind == SourcePostgres || c.State.Kind == StatePostgres
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
