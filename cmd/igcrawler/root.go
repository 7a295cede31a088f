package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"igcrawler/pkg/config"
	"igcrawler/pkg/instagram"
	"igcrawler/pkg/logger"
	"igcrawler/pkg/telemetry"
	"igcrawler/pkg/transport"
)

const shutdownTimeout = 5 * time.Second

var (
	// Version information
	version   = "0.1.0"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// app carries the global flags and the collaborators built from them
type app struct {
	configFile string
	format     string
	logLevel   string
	baseURL    string
	timeout    time.Duration
	rate       int
	retry      bool
	otlp       string

	cfg       *config.Config
	telemetry telemetry.Telemetry
	log       logger.Logger
	client    *instagram.Client
	printer   *printer
}

func newRootCmd() *cobra.Command {
	return (&app{}).command()
}

func (a *app) command() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "igcrawler",
		Short: "Fetch public Instagram media, users, hashtags and locations",
		Long: `igcrawler reads public Instagram pages and prints them as normalized records.

Pages are requested with ?__a=1 and may answer with either the legacy flat
payload or the GraphQL payload; both produce the same output. No login is
used, so only public content is reachable.

Results go to stdout as a table, JSON or YAML. Logs go to stderr.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file (default is ./.igcrawler.yaml or ~/.config/igcrawler/config.yaml)")
	flags.StringVarP(&a.format, "format", "o", config.FormatAuto, "output format (auto, table, json, yaml)")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error, disabled)")
	flags.StringVar(&a.baseURL, "base-url", "", "upstream base URL (default https://www.instagram.com)")
	flags.DurationVar(&a.timeout, "timeout", 0, "request timeout (default 30s)")
	flags.IntVar(&a.rate, "rate", 0, "requests per minute, 0 disables rate limiting (default 60)")
	flags.BoolVar(&a.retry, "retry", false, "retry transport failures, 429 and 5xx responses")
	flags.StringVar(&a.otlp, "otlp-endpoint", "", "export traces and metrics to this OTLP collector URL")

	rootCmd.AddCommand(
		a.mediaCmd(),
		a.userCmd(),
		a.locationCmd(),
		a.tagCmd(),
		a.searchCmd(),
		a.configCmd(),
	)

	rootCmd.SetVersionTemplate(`igcrawler {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{}
	err := a.command().ExecuteContext(ctx)
	a.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// setup loads the configuration and builds the client
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.log = logger.GetLogger().WithField("command", cmd.Name())

	a.telemetry, err = telemetry.Setup(cmd.Context(), "igcrawler", version, cfg.Telemetry, a.log)
	if err != nil {
		return err
	}
	a.client = instagram.NewClient(transport.NewHTTPFromConfig(cfg, a.log), a.log)
	a.printer = newPrinter(cmd.OutOrStdout(), cfg.Output.Format)

	a.log.DebugWithFields("igcrawler starting", map[string]interface{}{
		"version":  version,
		"base_url": cfg.Crawler.BaseURL,
		"format":   a.printer.format,
		"retry":    cfg.Retry.Enabled,
	})
	return nil
}

// close flushes telemetry, if any was installed
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.telemetry.Shutdown(ctx); err != nil && a.log != nil {
		a.log.WithError(err).Warn("failed to flush telemetry")
	}
}

func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(a.configFile, a.changedFlags(cmd))
}

// changedFlags returns only the flags the user set, so that defaults never
// override the config file or the environment.
func (a *app) changedFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	changed := cmd.Flags().Changed

	if changed("base-url") {
		flags["base-url"] = a.baseURL
	}
	if changed("timeout") {
		flags["timeout"] = a.timeout
	}
	if changed("rate") {
		flags["rate"] = a.rate
	}
	if changed("retry") {
		flags["retry"] = a.retry
	}
	if changed("format") {
		flags["format"] = a.format
	}
	if changed("log-level") {
		flags["log-level"] = a.logLevel
	}
	if changed("otlp-endpoint") {
		flags["otlp-endpoint"] = a.otlp
	}
	return flags
}
