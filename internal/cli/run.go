package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vvka-141/tourload/internal/config"
	"github.com/vvka-141/tourload/internal/logging"
	"github.com/vvka-141/tourload/internal/metrics"
	"github.com/vvka-141/tourload/internal/pipeline"
	"github.com/vvka-141/tourload/internal/report"
	"github.com/vvka-141/tourload/internal/source"
	"github.com/vvka-141/tourload/pkg/tourload"
)

type runFlagValues struct {
	inputs      inputFlagValues
	driver      string
	sqlitePath  string
	metricsFile string
	tolerance   float64
}

// inputFlagValues override the cleaned dataset locations.
type inputFlagValues struct {
	passengers, weather string
}

func addInputFlags(cmd *cobra.Command, f *inputFlagValues) {
	cmd.Flags().StringVar(&f.passengers, "passengers", "",
		"Cleaned passengers CSV (local path or s3://bucket/key)")
	cmd.Flags().StringVar(&f.weather, "weather", "",
		"Cleaned weather CSV (local path or s3://bucket/key)")
}

func (f inputFlagValues) apply(cfg *config.Config) {
	if f.passengers != "" {
		cfg.Inputs.Passengers = f.passengers
	}
	if f.weather != "" {
		cfg.Inputs.Weather = f.weather
	}
}

func addRunFlags(cmd *cobra.Command, f *runFlagValues) {
	addInputFlags(cmd, &f.inputs)
	cmd.Flags().StringVar(&f.driver, "store", "",
		"Store driver: postgres|sqlite (default from config: postgres)")
	cmd.Flags().StringVar(&f.sqlitePath, "sqlite-path", "",
		"SQLite database file for --store sqlite")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", "",
		"Write Prometheus text metrics for the run to this file")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", 0,
		"Absolute tolerance for real-valued checksum sums (default 0.01)")
}

func (f runFlagValues) apply(cmd *cobra.Command, cfg *config.Config) {
	f.inputs.apply(cfg)
	if f.driver != "" {
		cfg.Store.Driver = f.driver
	}
	if f.sqlitePath != "" {
		cfg.Store.SQLitePath = f.sqlitePath
	}
	if f.metricsFile != "" {
		cfg.MetricsFile = f.metricsFile
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Tolerance = f.tolerance
	}
}

func runPipeline(cmd *cobra.Command, flags runFlagValues) error {
	verbose := getVerboseFlag(cmd)
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), verbose)

	cfg, err := loadSettings(cmd, lookupEnv)
	if err != nil {
		return err
	}
	flags.apply(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout, _ := cfg.TimeoutDuration()

	ctx, cancel := runContext(cmd.Context(), timeout, cmd.ErrOrStderr())
	defer cancel()

	m := metrics.New()
	rep, err := executePipeline(ctx, cfg, logger)
	if err != nil {
		m.ObserveFailure()
		writeMetrics(m, cfg.MetricsFile, logger)
		return err
	}
	m.Observe(rep)
	writeMetrics(m, cfg.MetricsFile, logger)

	out := cmd.OutOrStdout()
	if err := report.Print(out, rep, report.DetectStyles(out)); err != nil {
		return err
	}
	return rep.Err()
}

func executePipeline(ctx context.Context, cfg *config.Config, logger tourload.Logger) (*pipeline.Report, error) {
	conn, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			logger.Error("close store: %v", cerr)
		}
	}()

	runner := pipeline.New(source.New(cfg.S3), logger, pipeline.WithTolerance(cfg.Tolerance))
	return runner.Run(ctx, conn, pipeline.Inputs{
		Passengers: cfg.Inputs.Passengers,
		Weather:    cfg.Inputs.Weather,
	})
}

// writeMetrics logs write failures instead of returning them.
func writeMetrics(m *metrics.Metrics, path string, logger tourload.Logger) {
	if path == "" {
		return
	}
	if err := m.WriteFile(path); err != nil {
		logger.Error("%v", err)
		return
	}
	logger.Verbose("Metrics written to %s", path)
}
