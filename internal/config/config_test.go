package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/Ngone6325/gofac/v2"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(newViper(t))
	require.NoError(t, err)
	require.Equal(t, Defaults(), cfg)
	require.Equal(t, gofac.Scoped, cfg.Discovery.DefaultLifetime)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gofac.yaml")
	content := `
discovery:
  default_lifetime: Transient
log:
  level: debug
  format: json
tracing:
  enabled: true
  exporter: none
output: yaml
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	v := newViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, gofac.Transient, cfg.Discovery.DefaultLifetime)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.True(t, cfg.Tracing.Enabled)
	require.Equal(t, "none", cfg.Tracing.Exporter)
	require.Equal(t, OutputYAML, cfg.Output)
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("GOFAC_DISCOVERY_DEFAULT_LIFETIME", "singleton")
	t.Setenv("GOFAC_LOG_LEVEL", "warn")

	cfg, err := Load(newViper(t))
	require.NoError(t, err)
	require.Equal(t, gofac.Singleton, cfg.Discovery.DefaultLifetime)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
		msg  string
	}{
		{"lifetime", "discovery.default_lifetime", "forever", "decode config"},
		{"level", "log.level", "loud", "log.level"},
		{"format", "log.format", "xml", "log.format"},
		{"output", "output", "csv", "output"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper(t)
			v.Set(tt.key, tt.val)
			_, err := Load(v)
			require.ErrorContains(t, err, tt.msg)
		})
	}
}

func TestValidate_UnsetLifetime(t *testing.T) {
	cfg := Defaults()
	cfg.Discovery.DefaultLifetime = gofac.LifetimeUnset
	require.ErrorIs(t, cfg.Validate(), gofac.ErrInvalidLifetime)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "logfmt"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "msg=shown")
	require.Contains(t, buf.String(), "k=v")

	_, err = LogConfig{Level: "nope"}.NewLogger(&buf)
	require.Error(t, err)
}

func TestLoad_FilesDelay(t *testing.T) {
	t.Setenv("GOFAC_FILES_DELAY", "5s")
	cfg, err := Load(newViper(t))
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.Files.Delay)

	v := newViper(t)
	v.Set("files.delay", "-2s")
	_, err = Load(v)
	require.ErrorContains(t, err, "files.delay")
}
