package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct && field.Type != reflect.TypeOf(time.Time{}) {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		// Handle time.Duration specially
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.Set(reflect.ValueOf(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer: %w", err)
			}
			field.SetInt(i)
		}

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			// Split comma-separated values, trim whitespace
			parts := strings.Split(value, ",")
			result := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					result = append(result, p)
				}
			}
			field.Set(reflect.ValueOf(result))
		} else {
			return fmt.Errorf("unsupported slice type: %s", field.Type().Elem().Kind())
		}

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT (%d) must be 1-65535", c.Server.Port))
	}
	if c.Server.ReadTimeout < 0 {
		errs = append(errs, "SERVER_READ_TIMEOUT must be non-negative")
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	// Database validation
	if c.UsesPostgres() {
		if c.Database.URL == "" {
			errs = append(errs, "DATABASE_URL is required when SOURCE_KIND or STATE_KIND is postgres")
		}
		if c.Database.MaxConns <= 0 {
			errs = append(errs, "DB_MAX_CONNS must be positive")
		}
		if c.Database.MinConns < 0 {
			errs = append(errs, "DB_MIN_CONNS must be non-negative")
		}
		if c.Database.MaxConns < c.Database.MinConns {
			errs = append(errs, fmt.Sprintf("DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)",
				c.Database.MaxConns, c.Database.MinConns))
		}
	}

	// Source validation
	switch c.Source.Kind {
	case SourceFile:
		if c.Source.FilePath == "" {
			errs = append(errs, "SOURCE_FILE is required for the file source")
		}
		if c.Source.Debounce < 0 {
			errs = append(errs, "SOURCE_FILE_DEBOUNCE must be non-negative")
		}
	case SourceFirestore:
		if c.Source.FirestoreProject == "" {
			errs = append(errs, "FIRESTORE_PROJECT_ID is required for the firestore source")
		}
	case SourceMongo:
		if c.Source.MongoURI == "" {
			errs = append(errs, "MONGO_URI is required for the mongo source")
		}
	case SourcePostgres:
		if c.Source.PollSchedule == "" {
			errs = append(errs, "SOURCE_POLL_SCHEDULE is required for the postgres source")
		}
	case SourceAMQP:
		if c.Source.AMQPURL == "" {
			errs = append(errs, "AMQP_URL is required for the amqp source")
		}
	default:
		errs = append(errs, fmt.Sprintf("SOURCE_KIND (%q) must be one of: file, firestore, mongo, postgres, amqp", c.Source.Kind))
	}
	if c.Source.Kind != SourceFile && c.Source.Kind != SourceAMQP && c.Source.Collection == "" {
		errs = append(errs, "SOURCE_COLLECTION must not be empty")
	}

	// State validation
	if c.State.Key == "" {
		errs = append(errs, "STATE_KEY must not be empty")
	}
	switch c.State.Kind {
	case StateMemory, StateRedis, StatePostgres:
	case StateFile:
		if c.State.FilePath == "" {
			errs = append(errs, "STATE_FILE is required for the file state store")
		}
	case StateSQLite:
		if c.State.SQLitePath == "" {
			errs = append(errs, "STATE_SQLITE_PATH is required for the sqlite state store")
		}
	default:
		errs = append(errs, fmt.Sprintf("STATE_KIND (%q) must be one of: memory, file, sqlite, redis, postgres", c.State.Kind))
	}

	// Export validation
	switch c.Export.Kind {
	case ExportDir:
		if c.Export.Dir == "" {
			errs = append(errs, "EXPORT_DIR is required for the dir export sink")
		}
	case ExportS3:
		if c.Export.S3Bucket == "" {
			errs = append(errs, "EXPORT_S3_BUCKET is required for the s3 export sink")
		}
	default:
		errs = append(errs, fmt.Sprintf("EXPORT_KIND (%q) must be one of: dir, s3", c.Export.Kind))
	}
	if c.Export.BaseName == "" {
		errs = append(errs, "EXPORT_BASE_NAME must not be empty")
	}
	if c.Export.MaxConcurrent < 1 {
		errs = append(errs, fmt.Sprintf("EXPORT_MAX_CONCURRENT (%d) must be at least 1", c.Export.MaxConcurrent))
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Connection strings and passwords are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port))
	b.WriteString(fmt.Sprintf("Database: {URL: %s, MaxConns: %d, MinConns: %d}, ",
		mask(c.Database.URL), c.Database.MaxConns, c.Database.MinConns))
	b.WriteString(fmt.Sprintf("Source: {Kind: %q, Collection: %q, File: %q, MongoURI: %s, AMQPURL: %s}, ",
		c.Source.Kind, c.Source.Collection, c.Source.FilePath, mask(c.Source.MongoURI), mask(c.Source.AMQPURL)))
	b.WriteString(fmt.Sprintf("State: {Kind: %q, Key: %q, RedisAddr: %q, RedisPassword: %s}, ",
		c.State.Kind, c.State.Key, c.State.RedisAddr, mask(c.State.RedisPassword)))
	b.WriteString(fmt.Sprintf("Export: {Kind: %q, Dir: %q, S3Bucket: %q}, ",
		c.Export.Kind, c.Export.Dir, c.Export.S3Bucket))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}

// mask hides a secret while still showing whether it is set.
func mask(s string) string {
	if s == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
