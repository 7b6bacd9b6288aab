// Package config loads service settings. Values come from the defaults,
// then an optional YAML file, then ASSETDESK_* environment variables (a
// .env file in the working directory is read first). Command-line flags
// are applied last by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/erazemk/assetdesk/internal/logging"
)

// EnvPrefix starts every environment variable read by Load.
const EnvPrefix = "ASSETDESK_"

// Config holds the server and CLI settings.
type Config struct {
	Addr          string        `yaml:"addr"`
	DBPath        string        `yaml:"db_path"`
	DataDir       string        `yaml:"data_dir"`
	AdminUser     string        `yaml:"admin_user"`
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	MaxImageBytes int64         `yaml:"max_image_bytes"`
	Log           LogConfig     `yaml:"log"`
}

// LogConfig selects the log level, encoding and optional log file.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Addr:          ":8080",
		DBPath:        "assetdesk.sqlite3",
		DataDir:       "data",
		AdminUser:     "admin",
		TokenTTL:      7 * 24 * time.Hour,
		MaxImageBytes: 5 << 20,
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ImageDir holds uploaded asset images.
func (c *Config) ImageDir() string { return filepath.Join(c.DataDir, "images") }

// BackupDir holds backup archives.
func (c *Config) BackupDir() string { return filepath.Join(c.DataDir, "backups") }

// Load reads the YAML file at path on top of the defaults and applies the
// environment. A missing file is not an error; an empty path skips it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("reading config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"ADDR":       &c.Addr,
		"DB_PATH":    &c.DBPath,
		"DATA_DIR":   &c.DataDir,
		"ADMIN_USER": &c.AdminUser,
		"JWT_SECRET": &c.JWTSecret,
		"LOG_LEVEL":  &c.Log.Level,
		"LOG_FORMAT": &c.Log.Format,
		"LOG_FILE":   &c.Log.File,
	}
	for key, dst := range str {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(EnvPrefix + "TOKEN_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTOKEN_TTL: %w", EnvPrefix, err)
		}
		c.TokenTTL = d
	}
	if v, ok := lookup(EnvPrefix + "MAX_IMAGE_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_IMAGE_BYTES: %w", EnvPrefix, err)
		}
		c.MaxImageBytes = n
	}
	return nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path must not be empty"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.AdminUser == "" {
		errs = append(errs, errors.New("admin_user must not be empty"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.MaxImageBytes <= 0 {
		errs = append(errs, errors.New("max_image_bytes must be positive"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if f := c.Log.Format; f != "console" && f != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", f))
	}
	return errors.Join(errs...)
}
