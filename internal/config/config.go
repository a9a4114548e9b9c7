// Package config provides configuration loading for repodigest.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for repodigest.
type Config struct {
	Output Output `koanf:"output"`
	GitHub GitHub `koanf:"github"`
	Ingest Ingest `koanf:"ingest"`
}

// Output controls where and how digests are persisted.
type Output struct {
	// Dir is the directory digests are written to.
	Dir string `koanf:"dir"`

	// Format is the digest serialization format: txt, md, or xml.
	Format string `koanf:"format"`
}

// GitHub holds hosting-platform API settings.
type GitHub struct {
	// Token authenticates API calls. Optional: public repository
	// listings work unauthenticated, at a lower rate limit.
	Token Secret `koanf:"token"`
}

// Ingest controls content fetching and batch behavior.
type Ingest struct {
	// Concurrency caps simultaneously in-flight repository fetches
	// during a user-level batch.
	Concurrency int `koanf:"concurrency"`

	// MaxFileSize is the per-file size cap in bytes. Larger files are
	// skipped, not truncated.
	MaxFileSize int64 `koanf:"max_file_size"`

	// IncludeIgnored disables gitignore-based exclusion.
	IncludeIgnored bool `koanf:"include_ignored"`

	// CloneTimeout bounds a single remote clone.
	CloneTimeout Duration `koanf:"clone_timeout"`
}

var validFormats = map[string]bool{
	"txt": true,
	"md":  true,
	"xml": true,
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "digests"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "txt"
	}
	if cfg.Ingest.Concurrency == 0 {
		cfg.Ingest.Concurrency = 5
	}
	if cfg.Ingest.MaxFileSize == 0 {
		cfg.Ingest.MaxFileSize = 1024 * 1024 // 1MB
	}
	if cfg.Ingest.CloneTimeout == 0 {
		cfg.Ingest.CloneTimeout = Duration(5 * time.Minute)
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("output format must be txt, md, or xml, got %q", c.Output.Format)
	}
	if c.Ingest.Concurrency < 1 || c.Ingest.Concurrency > 64 {
		return fmt.Errorf("ingest concurrency must be between 1 and 64, got %d", c.Ingest.Concurrency)
	}
	if c.Ingest.MaxFileSize > 10*1024*1024 {
		return fmt.Errorf("max_file_size cannot exceed 10MB")
	}
	if c.Ingest.CloneTimeout.Duration() <= 0 {
		return fmt.Errorf("clone_timeout must be > 0")
	}
	return nil
}
