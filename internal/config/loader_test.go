package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig places a config file in a fake home directory and returns
// its path. Tests override HOME so the allowed-directory check passes.
func writeConfig(t *testing.T, content string, perm os.FileMode) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "repodigest")
	require.NoError(t, os.MkdirAll(dir, 0700))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	return path
}

func TestLoadDefaults(t *testing.T) {
	// No config file at the default path: defaults apply.
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "digests", cfg.Output.Dir)
	assert.Equal(t, "txt", cfg.Output.Format)
	assert.Equal(t, 5, cfg.Ingest.Concurrency)
	assert.Equal(t, int64(1024*1024), cfg.Ingest.MaxFileSize)
	assert.Equal(t, 5*time.Minute, cfg.Ingest.CloneTimeout.Duration())
	assert.False(t, cfg.GitHub.Token.IsSet())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
output:
  dir: /tmp/out
  format: md
ingest:
  concurrency: 3
  clone_timeout: 90s
github:
  token: ghp_example
`, 0600)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	assert.Equal(t, "md", cfg.Output.Format)
	assert.Equal(t, 3, cfg.Ingest.Concurrency)
	assert.Equal(t, 90*time.Second, cfg.Ingest.CloneTimeout.Duration())
	assert.Equal(t, "ghp_example", cfg.GitHub.Token.Value())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
output:
  format: md
`, 0600)

	t.Setenv("REPODIGEST_OUTPUT_FORMAT", "xml")
	t.Setenv("REPODIGEST_INGEST_CONCURRENCY", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "xml", cfg.Output.Format)
	assert.Equal(t, 2, cfg.Ingest.Concurrency)
}

func TestLoadRejectsWeakPermissions(t *testing.T) {
	path := writeConfig(t, "output:\n  format: txt\n", 0644)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insecure config file permissions")
}

func TestLoadRejectsPathOutsideAllowedDirs(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	outside := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(outside, []byte("output: {}\n"), 0600))

	_, err := Load(outside)
	require.Error(t, err)
}

func TestLoadRejectsInvalidFormat(t *testing.T) {
	path := writeConfig(t, "output:\n  format: pdf\n", 0600)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output format")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	tests := []struct {
		name        string
		concurrency int
		wantErr     bool
	}{
		{"minimum", 1, false},
		{"default", 5, false},
		{"maximum", 64, false},
		{"too high", 65, true},
		{"negative", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			cfg.Ingest.Concurrency = tt.concurrency

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSecretRedaction(t *testing.T) {
	s := Secret("ghp_supersecret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "ghp_supersecret", s.Value())

	data, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "supersecret")

	assert.Equal(t, "", Secret("").String())
}

func TestDurationUnmarshal(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("2m30s")))
	assert.Equal(t, 150*time.Second, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-5s")))
	assert.Error(t, d.UnmarshalText([]byte("not-a-duration")))
}
