// Package cli implements the gofac command line: discovery over the sample
// catalog, plan rendering and composition checks.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ngone6325/gofac/v2"
	"github.com/Ngone6325/gofac/v2/discovery"
	"github.com/Ngone6325/gofac/v2/internal/config"
	"github.com/Ngone6325/gofac/v2/internal/tracing"
	"github.com/Ngone6325/gofac/v2/model"
)

var version = "dev"

// app carries state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	src     discovery.Source
	cfgFile string

	cfg      config.Config
	logger   *log.Logger
	provider *tracing.Provider
}

// NewRootCommand builds the command tree discovering services from src.
func NewRootCommand(src discovery.Source) *cobra.Command {
	a := &app{v: viper.New(), src: src}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Attribute-style service discovery for the gofac container",
		Long: `gofac discovers marked service implementations, validates them into a
registration plan and binds the plan into a gofac container.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.provider == nil {
				return nil
			}
			return a.provider.Shutdown(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default: ./gofac.yaml if present)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text, json, logfmt")
	flags.String("default-lifetime", "", "lifetime for markers without one: singleton, scoped, transient")
	flags.String("trace", "", "enable tracing with exporter: stdout, otlp, none")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("discovery.default_lifetime", flags.Lookup("default-lifetime"))

	root.AddCommand(newPlanCommand(a), newCheckCommand(a), newRunCommand(a))
	return root
}

// Execute runs the CLI against the default catalog.
func Execute(ctx context.Context) error {
	discovery.Default.Freeze()
	return NewRootCommand(discovery.Default).ExecuteContext(ctx)
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName(config.AppName)
		a.v.SetConfigType("yaml")
	}
	if err := a.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || a.cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	if exporter, _ := cmd.Flags().GetString("trace"); exporter != "" {
		a.v.Set("tracing.enabled", exporter != "none")
		a.v.Set("tracing.exporter", exporter)
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = cfg.Log.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	if cfg.Tracing.Writer == nil {
		cfg.Tracing.Writer = cmd.ErrOrStderr()
	}
	a.provider, err = tracing.NewProvider(cmd.Context(), cfg.Tracing)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	a.logger.Debug("config loaded", "file", a.v.ConfigFileUsed(), "default_lifetime", cfg.Discovery.DefaultLifetime)
	return nil
}

func (a *app) engine() *discovery.Engine {
	return discovery.New(
		discovery.WithLogger(a.logger.WithPrefix("discovery")),
		discovery.WithTracer(a.provider.Tracer()),
		discovery.WithDefaultLifetime(a.cfg.Discovery.DefaultLifetime),
	)
}

// compose discovers, applies the plan and registers the ambient logger and
// file settings.
func (a *app) compose(ctx context.Context) (*gofac.Container, discovery.RegistrationPlan, error) {
	c, plan, err := discovery.Compose(ctx, a.engine(), a.src)
	if err != nil {
		return nil, discovery.RegistrationPlan{}, err
	}
	if err := c.RegisterInstance(a.logger, gofac.Singleton); err != nil {
		return nil, discovery.RegistrationPlan{}, err
	}
	if err := c.RegisterInstance(model.FileConfig{Delay: a.cfg.Files.Delay}, gofac.Singleton); err != nil {
		return nil, discovery.RegistrationPlan{}, err
	}
	return c, plan, nil
}

func workDir() string {
	if dir, err := os.Getwd(); err == nil {
		return dir
	}
	return os.TempDir()
}

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
