package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"impact-eval/internal/accuracy"
	"impact-eval/internal/cfg"
	"impact-eval/internal/common"
	"impact-eval/internal/dataset"
	"impact-eval/internal/metrics"
	"impact-eval/internal/report"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	flagFormat      string
	flagStorePath   string
	flagDataset     string
	flagOutput      string
	flagShowFall    bool
	flagLogLevel    string
	flagMetricsFile string
	flagTimeout     time.Duration
	flagRiseLabel   string
	flagFallLabel   string
)

// rootCmd evaluates a labeled dataset and prints the report
var rootCmd = &cobra.Command{
	Use:   "impacteval [path]",
	Short: "Evaluate model impact labels against human labels",
	Long: `impacteval compares the model-predicted impact label (impact1) of every record
with its human label (output.impact), prints overall and per-direction accuracy,
both label distributions, and a buy/sell recommendation derived from each.

The path may be a JSON file, an http(s) URL, or a store directory. When omitted
the configured DATA_PATH is used.

Examples:
  impacteval
  impacteval labels.json --show-fall
  impacteval https://example.com/labels.json --output json
  impacteval --format boltdb --dataset baseline`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runEvaluate,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagStorePath, "store", "", "Dataset store directory (overrides STORE_PATH)")
	pf.StringVar(&flagDataset, "dataset", "", "Dataset name in the store (overrides DATASET)")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	f := rootCmd.Flags()
	f.StringVar(&flagFormat, "format", "", "Input format: auto, json, url, boltdb")
	f.StringVar(&flagOutput, "output", "", "Output format: text, json")
	f.BoolVar(&flagShowFall, "show-fall", false, "Also print accuracy for the fall class")
	f.StringVar(&flagMetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	f.DurationVar(&flagTimeout, "timeout", 0, "HTTP timeout for URL sources")
	f.StringVar(&flagRiseLabel, "rise-label", "", "Label that marks a rise")
	f.StringVar(&flagFallLabel, "fall-label", "", "Label that marks a fall")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings(cmd, args)
	if err != nil {
		return err
	}

	return evaluate(cmd.Context(), settings, cmd.OutOrStdout())
}

// evaluate runs one load, evaluate, report cycle and writes the report to out.
func evaluate(ctx context.Context, settings cfg.Settings, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	m := metrics.New()
	mw := metrics.NewWrapper(m)

	source := settings.DataPath
	if settings.Format == common.FormatBoltDB {
		source = settings.StorePath
	}

	loader := dataset.NewLoader(settings.HTTPTimeout)
	start := time.Now()
	items, err := loader.Load(ctx, source, settings.Format, settings.Dataset)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	mw.LoadDurationObserve(time.Since(start).Seconds())

	labels := settings.Labels()
	evaluator := accuracy.NewEvaluator(labels, mw)
	rep := evaluator.Evaluate(items)

	result := report.NewResult(source, rep, labels)

	mw.AccuracySet("overall", rep.OverallAccuracy())
	mw.AccuracySet("rise", rep.UpAccuracy())
	mw.AccuracySet("fall", rep.DownAccuracy())
	mw.RecommendationInc("human", string(result.HumanAdvice.Action))
	mw.RecommendationInc("model", string(result.ModelAdvice.Action))

	reporter := report.NewReporter(out, settings.OutputFormat, settings.ShowFallAccuracy)
	if err := reporter.Write(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if settings.MetricsFile != "" {
		if err := m.WriteTextfile(settings.MetricsFile); err != nil {
			log.Error().Err(err).Str("file", settings.MetricsFile).Msg("Failed to export metrics")
		}
	}

	log.Info().
		Str("source", source).
		Int("total", rep.Total).
		Int("skipped", len(rep.Skipped)).
		Msg("Evaluation completed")

	return nil
}

// loadSettings loads configuration, applies command line overrides and sets
// up logging.
func loadSettings(cmd *cobra.Command, args []string) (cfg.Settings, error) {
	settings, err := cfg.Load()
	if err != nil {
		return cfg.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}

	if len(args) > 0 {
		settings.DataPath = args[0]
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		settings.Format = flagFormat
	}
	if flags.Changed("store") {
		settings.StorePath = flagStorePath
	}
	if flags.Changed("dataset") {
		settings.Dataset = flagDataset
	}
	if flags.Changed("output") {
		settings.OutputFormat = flagOutput
	}
	if flags.Changed("show-fall") {
		settings.ShowFallAccuracy = flagShowFall
	}
	if flags.Changed("log-level") {
		settings.LogLevel = flagLogLevel
	}
	if flags.Changed("metrics-file") {
		settings.MetricsFile = flagMetricsFile
	}
	if flags.Changed("timeout") {
		settings.HTTPTimeout = flagTimeout
	}
	if flags.Changed("rise-label") {
		settings.RiseLabel = flagRiseLabel
	}
	if flags.Changed("fall-label") {
		settings.FallLabel = flagFallLabel
	}

	if err := settings.Validate(); err != nil {
		return cfg.Settings{}, fmt.Errorf("invalid settings: %w", err)
	}

	setupLogging(settings.LogLevel)
	return settings, nil
}

func setupLogging(logLevel string) {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}
