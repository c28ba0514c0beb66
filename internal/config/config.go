// Package config loads gofac CLI settings from flags, environment and an
// optional YAML file through viper.
package config

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/Ngone6325/gofac/v2"
	"github.com/Ngone6325/gofac/v2/internal/tracing"
)

const (
	// AppName is the application name.
	AppName = "gofac"
	// EnvPrefix prefixes environment overrides, e.g. GOFAC_LOG_LEVEL.
	EnvPrefix = "GOFAC"
)

// Output formats accepted by the plan command.
const (
	OutputText = "text"
	OutputYAML = "yaml"
	OutputJSON = "json"
)

// Config is the complete CLI configuration.
type Config struct {
	Discovery DiscoveryConfig `mapstructure:"discovery" yaml:"discovery"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Files     FilesConfig     `mapstructure:"files" yaml:"files"`
	Tracing   tracing.Config  `mapstructure:"tracing" yaml:"tracing"`
	Output    string          `mapstructure:"output" yaml:"output"`
}

// DiscoveryConfig holds discovery policy.
type DiscoveryConfig struct {
	// DefaultLifetime applies to markers without a lifetime.
	DefaultLifetime gofac.Lifetime `mapstructure:"default_lifetime" yaml:"default_lifetime"`
}

// FilesConfig tunes the sample file service.
type FilesConfig struct {
	// Delay simulates slow storage before each write.
	Delay time.Duration `mapstructure:"delay" yaml:"delay"`
}

// LogConfig selects the log level and formatter.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Discovery: DiscoveryConfig{DefaultLifetime: gofac.Scoped},
		Log:       LogConfig{Level: "info", Format: "text"},
		Files:     FilesConfig{Delay: 0},
		Tracing:   tracing.DefaultConfig(),
		Output:    OutputText,
	}
}

// SetDefaults registers Defaults on v and enables environment overrides.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("discovery.default_lifetime", d.Discovery.DefaultLifetime.String())
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("files.delay", d.Files.Delay)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("output", d.Output)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if !c.Discovery.DefaultLifetime.Valid() {
		return fmt.Errorf("discovery.default_lifetime: %w", gofac.ErrInvalidLifetime)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Files.Delay < 0 {
		return fmt.Errorf("files.delay: must not be negative, got %s", c.Files.Delay)
	}
	switch c.Log.Format {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("log.format: unsupported format %q", c.Log.Format)
	}
	switch c.Output {
	case OutputText, OutputYAML, OutputJSON:
	default:
		return fmt.Errorf("output: unsupported format %q", c.Output)
	}
	return nil
}

// NewLogger builds the process logger writing to w.
func (c LogConfig) NewLogger(w io.Writer) (*log.Logger, error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	formatter := log.TextFormatter
	switch c.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:    AppName,
		Level:     level,
		Formatter: formatter,
	}), nil
}
