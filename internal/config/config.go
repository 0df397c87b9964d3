// Package config provides centralized configuration for the processor.
// Settings load from environment variables with defaults and are validated
// on startup so a misconfigured run fails before any input is read.
package config

// Config holds all runtime settings.
type Config struct {
	Queue   QueueConfig
	Ingest  IngestConfig
	Engine  EngineConfig
	Logging LoggingConfig
}

// QueueConfig tunes the channel between the source and the engine.
type QueueConfig struct {
	// Size is the bounded queue capacity. When the engine falls behind, a
	// full queue suspends the source; this is the only backpressure
	// mechanism in the pipeline. (default: 10000)
	Size int `env:"QUEUE_SIZE" default:"10000"`
}

// IngestConfig holds input-side settings.
type IngestConfig struct {
	// MaxFileSize is the largest input file accepted, in bytes (default: 100MB)
	MaxFileSize int64 `env:"INGEST_MAX_FILE_SIZE" default:"104857600"`

	// RejectsFile, when set, is where malformed input rows are written as
	// CSV with a status column. Empty disables the file; rejects are
	// always logged either way.
	RejectsFile string `env:"INGEST_REJECTS_FILE"`
}

// EngineConfig carries the engine's map pre-size hints.
type EngineConfig struct {
	// AccountCapacity pre-sizes the account table (default: 1024)
	AccountCapacity int `env:"ENGINE_ACCOUNT_CAPACITY" default:"1024"`

	// LedgerCapacity pre-sizes each transaction ledger (default: 4096)
	LedgerCapacity int `env:"ENGINE_LEDGER_CAPACITY" default:"4096"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
