package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pfrederiksen/flatiron-scraper/internal/config"
	"github.com/pfrederiksen/flatiron-scraper/internal/logger"
	"github.com/pfrederiksen/flatiron-scraper/internal/metrics"
	"github.com/pfrederiksen/flatiron-scraper/internal/runner"
	"github.com/pfrederiksen/flatiron-scraper/internal/scraper"
	"github.com/pfrederiksen/flatiron-scraper/internal/storage"
	"github.com/rs/xid"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig      string
	flagBaseURL     string
	flagFormat      string
	flagOutput      string
	flagMetricsFile string
	flagNoDelay     bool
	flagVerbose     bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatiron-scraper",
		Short: "Print the main heading, courses and links of the Flatiron School website",
		Long: `Fetches the Flatiron School homepage, extracts the main heading, a list of
course titles and a sample of the links on the page, and prints a report.
Fetch failures never abort the run; the report explains what could not be loaded.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runScrape,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "", "YAML config file")
	cmd.Flags().StringVar(&flagBaseURL, "base-url", "", "Override the site base URL")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json or pdf")
	cmd.Flags().StringVar(&flagOutput, "output", "", "Write the report to this file instead of stdout (required for pdf)")
	cmd.Flags().StringVar(&flagMetricsFile, "metrics-file", "", "Write Prometheus metrics in text format to this file")
	cmd.Flags().BoolVar(&flagNoDelay, "no-delay", false, "Disable the politeness delay between requests")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging and report details")

	return cmd
}

// loadConfig layers defaults, the config file, the environment and flags, in that order.
func loadConfig() (config.Config, error) {
	cfg := config.Default()

	if flagConfig != "" {
		loaded, err := config.LoadFile(flagConfig, cfg)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	cfg, err := config.ApplyEnv(cfg)
	if err != nil {
		return config.Config{}, fmt.Errorf("reading environment: %w", err)
	}

	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagNoDelay {
		cfg = cfg.WithoutDelay()
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger writes to stderr so stdout carries only the report.
func newLogger(format OutputFormat, w io.Writer) (*logger.Logger, error) {
	level, err := logger.ParseLevel(os.Getenv("SCRAPER_LOG_LEVEL"))
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}

	if format == FormatJSON {
		return logger.New(level, w), nil
	}
	return logger.NewConsole(level, w), nil
}

// runScrape is the main command logic
func runScrape(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON && format != FormatPDF {
		return fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'pdf')", flagFormat)
	}
	if format == FormatPDF && flagOutput == "" {
		return fmt.Errorf("--output is required for pdf format")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := newLogger(format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	runID := xid.New().String()
	log = log.With(logger.Fields{"run_id": runID})
	logger.SetDefault(log)

	rec := metrics.New()

	sc, err := scraper.New(cfg, scraper.WithLogger(log), scraper.WithMetrics(rec))
	if err != nil {
		return fmt.Errorf("initializing scraper: %w", err)
	}

	report := runner.New(sc, cfg,
		runner.WithRunID(runID),
		runner.WithLogger(log),
		runner.WithMetrics(rec),
	).Run(cmd.Context())

	if flagMetricsFile != "" {
		path, err := storage.PrepareFile(flagMetricsFile)
		if err != nil {
			return err
		}
		if err := rec.WriteTextfile(path); err != nil {
			return err
		}
	}

	if flagOutput == "" {
		if err := WriteOutput(cmd.OutOrStdout(), report, format, flagVerbose); err != nil {
			return fmt.Errorf("writing output: %w", err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := WriteOutput(&buf, report, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if err := storage.WriteFile(flagOutput, buf.Bytes()); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	log.Info("Report saved", logger.Fields{"path": flagOutput, "format": string(format)})

	return nil
}

// Execute runs the CLI
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := NewRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
