package analysis

import (
	"context"

	"github.com/vvka-141/tourload/internal/source"
	"github.com/vvka-141/tourload/internal/tabular"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// Load reads the cleaned datasets and joins them.
func Load(ctx context.Context, opener source.Opener, passengers, weather string, opts tabular.Options) ([]Observation, error) {
	p, err := tabular.ReadFile[tourload.PassengerRecord](ctx, opener, passengers, opts)
	if err != nil {
		return nil, err
	}
	w, err := tabular.ReadFile[tourload.WeatherRecord](ctx, opener, weather, opts)
	if err != nil {
		return nil, err
	}
	return Join(p.Records, w.Records), nil
}
