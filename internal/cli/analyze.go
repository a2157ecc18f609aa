package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/tourload/internal/analysis"
	"github.com/vvka-141/tourload/internal/charts"
	"github.com/vvka-141/tourload/internal/logging"
	"github.com/vvka-141/tourload/internal/report"
	"github.com/vvka-141/tourload/internal/source"
	"github.com/vvka-141/tourload/internal/tabular"
)

type analyzeFlagValues struct {
	inputs inputFlagValues
	plots  string
}

func newAnalyzeCmd() *cobra.Command {
	var flags analyzeFlagValues

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Relate passenger arrivals to the weather",
		Long: `Analyze joins the cleaned datasets by month and prints descriptive
statistics, seasonal and monthly averages, Pearson correlations of passengers
with each weather variable, and a linear regression on the standardized
weather variables.

With --plots (or plots_dir in tourload.yaml) PNG charts are written to the
given directory.

Examples:
  tourload analyze
  tourload analyze --plots ./plots`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, flags)
		},
	}

	addInputFlags(cmd, &flags.inputs)
	cmd.Flags().StringVar(&flags.plots, "plots", "", "Write PNG charts to this directory")
	return cmd
}

func runAnalyze(cmd *cobra.Command, flags analyzeFlagValues) error {
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	cfg, err := loadSettings(cmd, lookupEnv)
	if err != nil {
		return err
	}
	flags.inputs.apply(cfg)
	if flags.plots != "" {
		cfg.PlotsDir = flags.plots
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout, _ := cfg.TimeoutDuration()

	ctx, cancel := runContext(cmd.Context(), timeout, cmd.ErrOrStderr())
	defer cancel()

	obs, err := analysis.Load(ctx, source.New(cfg.S3), cfg.Inputs.Passengers, cfg.Inputs.Weather, tabular.Options{})
	if err != nil {
		return err
	}
	logger.Verbose("Joined %d months", len(obs))

	res, err := analysis.Analyze(obs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.PrintAnalysis(out, res, report.DetectStyles(out)); err != nil {
		return err
	}

	if cfg.PlotsDir == "" {
		return nil
	}
	written, err := charts.WriteAll(cfg.PlotsDir, res)
	if err != nil {
		return err
	}
	for _, path := range written {
		logger.Info("✓ Wrote %s", path)
	}
	return nil
}
