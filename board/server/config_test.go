// ABOUTME: Tests for configuration layering and the remote-access safety rules.
package server

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/2389-research/gridhq/board/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"GRIDHQ_CONFIG", "GRIDHQ_HOME", "GRIDHQ_BIND", "GRIDHQ_ALLOW_REMOTE", "GRIDHQ_API_TOKEN",
	"GRIDHQ_ALLOWED_EMAILS", "GRIDHQ_EMAIL_HEADER", "GRIDHQ_DB_DRIVER", "GRIDHQ_DB_PATH",
	"GRIDHQ_ATTACHMENTS", "GRIDHQ_ATTACHMENTS_DIR", "GRIDHQ_MAX_ATTACHMENT_BYTES",
	"GRIDHQ_LOG_LEVEL", "GRIDHQ_VERSION",
}

// clearConfigEnv unsets every GRIDHQ_* variable and restores them after the test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestConfigDefaults(t *testing.T) {
	clearConfigEnv(t)
	home := t.TempDir()
	t.Setenv("GRIDHQ_HOME", home)

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8787", cfg.Bind)
	assert.Equal(t, filepath.Join(home, "gridhq.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join(home, "attachments"), cfg.AttachmentsDir)
	assert.Equal(t, DefaultEmailHeader, cfg.EmailHeader)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, core.DefaultMaxAttachmentBytes, cfg.MaxAttachmentBytes)
	assert.Equal(t, "dev", cfg.Version)
	assert.False(t, cfg.Attachments)
	assert.Empty(t, cfg.AllowedEmails)
}

func TestConfigLayering(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "gridhq.yaml", `
home: `+dir+`
bind: 127.0.0.1:9000
api_token: from-yaml
allowed_emails: [a@example.com, " b@example.com "]
attachments: true
log_level: debug
version: from-yaml
`)
	envPath := writeFile(t, dir, ".env", "GRIDHQ_VERSION=from-dotenv\nGRIDHQ_BIND=127.0.0.1:9100\n")
	t.Setenv("GRIDHQ_BIND", "127.0.0.1:9200")

	cfg, err := Load(yamlPath, envPath)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9200", cfg.Bind, "environment wins over .env and yaml")
	assert.Equal(t, "from-dotenv", cfg.Version, ".env wins over yaml")
	assert.Equal(t, "from-yaml", cfg.APIToken)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.AllowedEmails)
	assert.True(t, cfg.Attachments)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestConfigFromEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GRIDHQ_HOME", t.TempDir())
	t.Setenv("GRIDHQ_ALLOWED_EMAILS", "x@example.com, y@example.com,")
	t.Setenv("GRIDHQ_ATTACHMENTS", "yes")
	t.Setenv("GRIDHQ_MAX_ATTACHMENT_BYTES", "1024")
	t.Setenv("GRIDHQ_DB_DRIVER", "sqlite")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []string{"x@example.com", "y@example.com"}, cfg.AllowedEmails)
	assert.True(t, cfg.Attachments)
	assert.Equal(t, int64(1024), cfg.MaxAttachmentBytes)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}

func TestConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want error
	}{
		{"remote without auth", map[string]string{"GRIDHQ_ALLOW_REMOTE": "true"}, ErrRemoteWithoutAuth},
		{"wildcard bind", map[string]string{"GRIDHQ_BIND": "0.0.0.0:8787"}, ErrNonLoopbackBind},
		{"empty host bind", map[string]string{"GRIDHQ_BIND": ":8787"}, ErrNonLoopbackBind},
		{"hostname bind", map[string]string{"GRIDHQ_BIND": "example.com:8787"}, ErrNonLoopbackBind},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("GRIDHQ_HOME", t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := ConfigFromEnv()
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestConfigAllowsRemoteWithAuth(t *testing.T) {
	for _, env := range []map[string]string{
		{"GRIDHQ_API_TOKEN": "secret"},
		{"GRIDHQ_ALLOWED_EMAILS": "me@example.com"},
	} {
		clearConfigEnv(t)
		t.Setenv("GRIDHQ_HOME", t.TempDir())
		t.Setenv("GRIDHQ_ALLOW_REMOTE", "1")
		t.Setenv("GRIDHQ_BIND", "0.0.0.0:8787")
		for k, v := range env {
			t.Setenv(k, v)
		}
		cfg, err := ConfigFromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.AllowRemote)
	}
}

func TestConfigInvalidValues(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("GRIDHQ_HOME", t.TempDir())

	t.Setenv("GRIDHQ_MAX_ATTACHMENT_BYTES", "lots")
	_, err := ConfigFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRIDHQ_MAX_ATTACHMENT_BYTES")

	t.Setenv("GRIDHQ_MAX_ATTACHMENT_BYTES", "")
	t.Setenv("GRIDHQ_DB_DRIVER", "postgres")
	_, err = ConfigFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GRIDHQ_DB_DRIVER")
}

func TestConfigMissingYAML(t *testing.T) {
	clearConfigEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestConfigRehome(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Home = "/old"
	cfg.fillDerived()
	cfg.Rehome("/new")
	assert.Equal(t, "/new", cfg.Home)
	assert.Equal(t, filepath.Join("/new", "gridhq.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("/new", "attachments"), cfg.AttachmentsDir)

	cfg.DBPath = "/data/board.db"
	cfg.Rehome("/other")
	assert.Equal(t, "/data/board.db", cfg.DBPath)
	assert.Equal(t, filepath.Join("/other", "attachments"), cfg.AttachmentsDir)
}
