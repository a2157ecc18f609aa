package cli

import (
	"github.com/spf13/cobra"

	"github.com/vvka-141/tourload/internal/clean"
	"github.com/vvka-141/tourload/internal/logging"
	"github.com/vvka-141/tourload/internal/source"
)

type cleanFlagValues struct {
	from, to                  int
	rawPassengers, rawWeather string
	outPassengers, outWeather string
}

func newCleanCmd() *cobra.Command {
	var flags cleanFlagValues

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Convert the raw exports into the cleaned CSV datasets",
		Long: `Clean converts the raw Statistics Iceland passenger export (semicolon
separated, one column per month) and the Met Office station export (tab
separated) into the cleaned CSV files the pipeline loads.

Only years within the configured range are kept (default 2012-2022). Weather
months whose min/mean/max temperatures are out of order are reported as
warnings.

Examples:
  tourload clean
  tourload clean --from 2015 --to 2019
  tourload clean --raw-passengers s3://bucket/raw/passengers.csv`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, flags)
		},
	}

	cmd.Flags().IntVar(&flags.from, "from", 0, "First year to keep (default 2012)")
	cmd.Flags().IntVar(&flags.to, "to", 0, "Last year to keep (default 2022)")
	cmd.Flags().StringVar(&flags.rawPassengers, "raw-passengers", "", "Raw passengers export")
	cmd.Flags().StringVar(&flags.rawWeather, "raw-weather", "", "Raw weather export")
	cmd.Flags().StringVar(&flags.outPassengers, "passengers", "", "Cleaned passengers output")
	cmd.Flags().StringVar(&flags.outWeather, "weather", "", "Cleaned weather output")
	return cmd
}

func runClean(cmd *cobra.Command, flags cleanFlagValues) error {
	logger := logging.NewWriterLogger(cmd.ErrOrStderr(), getVerboseFlag(cmd))

	cfg, err := loadSettings(cmd, lookupEnv)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("from") {
		cfg.Years.From = flags.from
	}
	if cmd.Flags().Changed("to") {
		cfg.Years.To = flags.to
	}
	if flags.rawPassengers != "" {
		cfg.Raw.Passengers = flags.rawPassengers
	}
	if flags.rawWeather != "" {
		cfg.Raw.Weather = flags.rawWeather
	}
	inputFlagValues{passengers: flags.outPassengers, weather: flags.outWeather}.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	timeout, _ := cfg.TimeoutDuration()

	ctx, cancel := runContext(cmd.Context(), timeout, cmd.ErrOrStderr())
	defer cancel()

	_, err = clean.NewCleaner(source.New(cfg.S3), logger).Run(ctx, clean.Job{
		PassengersIn:  cfg.Raw.Passengers,
		PassengersOut: cfg.Inputs.Passengers,
		WeatherIn:     cfg.Raw.Weather,
		WeatherOut:    cfg.Inputs.Weather,
		Years:         cfg.Years,
	})
	return err
}
