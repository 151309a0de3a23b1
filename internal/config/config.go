package config

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Sync transports.
const (
	SyncNone = "none"
	SyncHTTP = "http"
	SyncAMQP = "amqp"
)

var (
	storageBackends = []string{StorageMemory, StorageFile, StorageSQLite, StoragePostgres}
	syncBackends    = []string{SyncNone, SyncHTTP, SyncAMQP}
	logLevels       = []string{"debug", "info", "warn", "error"}
)

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Ledger storage
	StorageBackend string
	StorageKey     string
	LedgerFilePath string
	SQLiteDBPath   string
	PostgresDSN    string

	// Remote sync
	SyncBackend      string
	SyncEndpoint     string
	SyncTimeout      time.Duration
	SyncSuccessClear time.Duration
	SyncFailureClear time.Duration

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets mirror (worker)
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string
	WorkerArchivePath        string

	// Derived view cache
	ViewCacheSize int
	ViewCacheTTL  time.Duration
}

// SetDefaults registers every key with its default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8081")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("STORAGE_BACKEND", StorageFile)
	v.SetDefault("STORAGE_KEY", "expense-tracker-data")
	v.SetDefault("LEDGER_FILE_PATH", "./data/expense-tracker-data.json")
	v.SetDefault("SQLITE_DB_PATH", "./data/kakeibo.db")
	v.SetDefault("POSTGRES_DSN", "")

	v.SetDefault("SYNC_BACKEND", SyncHTTP)
	v.SetDefault("SYNC_ENDPOINT", "")
	v.SetDefault("SYNC_TIMEOUT", 15*time.Second)
	v.SetDefault("SYNC_SUCCESS_CLEAR", 3*time.Second)
	v.SetDefault("SYNC_FAILURE_CLEAR", 5*time.Second)

	v.SetDefault("AMQP_URL", "")
	v.SetDefault("AMQP_EXCHANGE", "kakeibo")
	v.SetDefault("AMQP_QUEUE", "ledger_sync")

	v.SetDefault("GOOGLE_SPREADSHEET_ID", "")
	v.SetDefault("GOOGLE_SHEET_NAME", "Expenses")
	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	v.SetDefault("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	v.SetDefault("WORKER_ARCHIVE_PATH", "./data/worker-snapshot.json")

	v.SetDefault("VIEW_CACHE_SIZE", 64)
	v.SetDefault("VIEW_CACHE_TTL", 5*time.Minute)
}

// NewViper returns a viper instance reading the environment with defaults set.
// Command-line flags can be bound into it before calling FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()
	return v
}

// Load reads the configuration from the environment.
func Load() *Config {
	return FromViper(NewViper())
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Port:     v.GetString("PORT"),
		LogLevel: strings.ToLower(v.GetString("LOG_LEVEL")),

		StorageBackend: strings.ToLower(v.GetString("STORAGE_BACKEND")),
		StorageKey:     v.GetString("STORAGE_KEY"),
		LedgerFilePath: v.GetString("LEDGER_FILE_PATH"),
		SQLiteDBPath:   v.GetString("SQLITE_DB_PATH"),
		PostgresDSN:    v.GetString("POSTGRES_DSN"),

		SyncBackend:      strings.ToLower(v.GetString("SYNC_BACKEND")),
		SyncEndpoint:     v.GetString("SYNC_ENDPOINT"),
		SyncTimeout:      v.GetDuration("SYNC_TIMEOUT"),
		SyncSuccessClear: v.GetDuration("SYNC_SUCCESS_CLEAR"),
		SyncFailureClear: v.GetDuration("SYNC_FAILURE_CLEAR"),

		AMQPURL:      v.GetString("AMQP_URL"),
		AMQPExchange: v.GetString("AMQP_EXCHANGE"),
		AMQPQueue:    v.GetString("AMQP_QUEUE"),

		GoogleSpreadsheetID:      v.GetString("GOOGLE_SPREADSHEET_ID"),
		GoogleSheetName:          v.GetString("GOOGLE_SHEET_NAME"),
		GoogleServiceAccountJSON: v.GetString("GOOGLE_SERVICE_ACCOUNT_JSON"),
		GoogleServiceAccountFile: v.GetString("GOOGLE_SERVICE_ACCOUNT_FILE"),
		WorkerArchivePath:        v.GetString("WORKER_ARCHIVE_PATH"),

		ViewCacheSize: v.GetInt("VIEW_CACHE_SIZE"),
		ViewCacheTTL:  v.GetDuration("VIEW_CACHE_TTL"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(logLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, logLevels))
	}

	if !slices.Contains(storageBackends, c.StorageBackend) {
		errors = append(errors, fmt.Sprintf("invalid storage backend '%s': must be one of %v", c.StorageBackend, storageBackends))
	}
	if c.StorageKey == "" {
		errors = append(errors, "storage key cannot be empty")
	}
	switch c.StorageBackend {
	case StorageFile:
		if c.LedgerFilePath == "" {
			errors = append(errors, "ledger file path cannot be empty when using file backend")
		}
	case StorageSQLite:
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		}
	case StoragePostgres:
		if c.PostgresDSN == "" {
			errors = append(errors, "PostgreSQL DSN is required when using postgres backend")
		}
	}

	if !slices.Contains(syncBackends, c.SyncBackend) {
		errors = append(errors, fmt.Sprintf("invalid sync backend '%s': must be one of %v", c.SyncBackend, syncBackends))
	}
	if c.SyncBackend == SyncHTTP && c.SyncEndpoint != "" {
		if u, err := url.Parse(c.SyncEndpoint); err != nil {
			errors = append(errors, fmt.Sprintf("invalid sync endpoint '%s': %v", c.SyncEndpoint, err))
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errors = append(errors, fmt.Sprintf("invalid sync endpoint scheme '%s': must be 'http' or 'https'", u.Scheme))
		}
	}
	if c.SyncTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("invalid sync timeout %v: must be positive", c.SyncTimeout))
	}
	if c.SyncSuccessClear <= 0 || c.SyncFailureClear <= 0 {
		errors = append(errors, "sync status clear delays must be positive")
	}

	if c.SyncBackend == SyncAMQP {
		errors = append(errors, c.validateAMQP()...)
	}

	if c.ViewCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid view cache size %d: must be at least 1", c.ViewCacheSize))
	}
	if c.ViewCacheTTL < time.Second {
		errors = append(errors, fmt.Sprintf("invalid view cache TTL %v: must be at least 1 second", c.ViewCacheTTL))
	}

	return joinErrors(errors)
}

// ValidateWorker checks what the sheet mirroring worker needs.
func (c *Config) ValidateWorker() error {
	var errors []string
	if !slices.Contains(logLevels, c.LogLevel) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, logLevels))
	}
	errors = append(errors, c.validateAMQP()...)
	if c.GoogleSpreadsheetID == "" {
		errors = append(errors, "Google Spreadsheet ID is required for the worker")
	}
	if c.GoogleSheetName == "" {
		errors = append(errors, "Google Sheet name is required for the worker")
	}
	if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
		errors = append(errors, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided")
	}
	return joinErrors(errors)
}

func (c *Config) validateAMQP() []string {
	var errors []string
	if c.AMQPURL == "" {
		return append(errors, "AMQP URL is required when using amqp")
	}
	if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
	} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
		errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
	}
	if c.AMQPExchange == "" {
		errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
	}
	if c.AMQPQueue == "" {
		errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
	}
	return errors
}

func joinErrors(errors []string) error {
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}
