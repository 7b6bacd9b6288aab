package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, filepath.Join("data", "images"), cfg.ImageDir())
	assert.Equal(t, filepath.Join("data", "backups"), cfg.BackupDir())
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "assetdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":9000"
db_path: /var/lib/assetdesk/db.sqlite3
token_ttl: 12h
log:
  level: debug
  format: json
`), 0o600))

	t.Setenv("ASSETDESK_ADDR", ":9100")
	t.Setenv("ASSETDESK_MAX_IMAGE_BYTES", "1024")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Addr, "environment wins over the file")
	assert.Equal(t, "/var/lib/assetdesk/db.sqlite3", cfg.DBPath)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, int64(1024), cfg.MaxImageBytes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "console", Default().Log.Format)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("ASSETDESK_ADMIN_USER=root\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("ASSETDESK_ADMIN_USER") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.AdminUser)
}

func TestLoadBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Setenv("ASSETDESK_TOKEN_TTL", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "TOKEN_TTL")

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [\n"), 0o600))
	t.Setenv("ASSETDESK_TOKEN_TTL", "1h")
	_, err = Load(path)
	assert.ErrorContains(t, err, "parsing config file")
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Addr = ""
	cfg.TokenTTL = 0
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"addr", "token_ttl", "loud", "xml"} {
		assert.ErrorContains(t, err, want)
	}
}
