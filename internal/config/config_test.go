package config

import (
	"os"
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Queue.Size != 10000 {
		t.Errorf("Queue.Size = %d, want %d", cfg.Queue.Size, 10000)
	}
	if cfg.Ingest.MaxFileSize != 104857600 {
		t.Errorf("Ingest.MaxFileSize = %d, want %d", cfg.Ingest.MaxFileSize, 104857600)
	}
	if cfg.Ingest.RejectsFile != "" {
		t.Errorf("Ingest.RejectsFile = %q, want empty", cfg.Ingest.RejectsFile)
	}
	if cfg.Engine.AccountCapacity != 1024 {
		t.Errorf("Engine.AccountCapacity = %d, want %d", cfg.Engine.AccountCapacity, 1024)
	}
	if cfg.Engine.LedgerCapacity != 4096 {
		t.Errorf("Engine.LedgerCapacity = %d, want %d", cfg.Engine.LedgerCapacity, 4096)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("QUEUE_SIZE", "256")
	os.Setenv("INGEST_REJECTS_FILE", "/tmp/rejects.csv")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("QUEUE_SIZE")
		os.Unsetenv("INGEST_REJECTS_FILE")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Queue.Size != 256 {
		t.Errorf("Queue.Size = %d, want %d", cfg.Queue.Size, 256)
	}
	if cfg.Ingest.RejectsFile != "/tmp/rejects.csv" {
		t.Errorf("Ingest.RejectsFile = %q, want %q", cfg.Ingest.RejectsFile, "/tmp/rejects.csv")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		value string
	}{
		{"queue size not a number", "QUEUE_SIZE", "lots"},
		{"queue size zero", "QUEUE_SIZE", "0"},
		{"queue size negative", "QUEUE_SIZE", "-5"},
		{"file size zero", "INGEST_MAX_FILE_SIZE", "0"},
		{"account capacity zero", "ENGINE_ACCOUNT_CAPACITY", "0"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv(tt.env, tt.value)
			defer os.Unsetenv(tt.env)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.env, tt.value)
			}
		})
	}
}

func TestValidate_CollectsAllFailures(t *testing.T) {
	cfg := &Config{}
	cfg.Logging.Level = "nope"
	cfg.Logging.Format = "nope"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() on zero config should fail")
	}

	for _, want := range []string{"QUEUE_SIZE", "LOG_LEVEL", "LOG_FORMAT", "ENGINE_ACCOUNT_CAPACITY"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
}
