package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "portal.db", cfg.Storage.Path)
	assert.Equal(t, 5*time.Second, cfg.Notify.MessageTTL)
	assert.Equal(t, int64(5*1024*1024), cfg.Upload.MaxBytes())
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	path := filepath.Join(dir, "portal.yaml")
	body := []byte("storage:\n  driver: memory\nnotify:\n  message_ttl: 2s\nlog:\n  level: debug\n")
	require.NoError(t, os.WriteFile(path, body, 0o644))

	t.Setenv("CLUBPORTAL_UPLOAD_MAX_SIZE_MB", "8")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, 2*time.Second, cfg.Notify.MessageTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8, cfg.Upload.MaxSizeMB)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CLUBPORTAL_STORAGE_PATH=club.db\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("CLUBPORTAL_STORAGE_PATH") })

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "club.db", cfg.Storage.Path)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(viper.New(), "does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "etcd" }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.Storage.Path = " " }, wantErr: true},
		{name: "redis without addr", mutate: func(c *Config) {
			c.Storage.Driver = DriverRedis
			c.Storage.RedisAddr = ""
		}, wantErr: true},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "zero ttl", mutate: func(c *Config) { c.Notify.MessageTTL = 0 }, wantErr: true},
		{name: "zero upload size", mutate: func(c *Config) { c.Upload.MaxSizeMB = 0 }, wantErr: true},
		{name: "no downscaling", mutate: func(c *Config) { c.Upload.MaxDimension = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
