package pipeline

import "fmt"

// State is a step of a pipeline run. States advance strictly in order.
type State int

const (
	StateReading State = iota
	StateSchemaReset
	StateLoadingPassengers
	StateLoadingWeather
	StateVerifying
	StateReported
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "Reading"
	case StateSchemaReset:
		return "SchemaReset"
	case StateLoadingPassengers:
		return "Loading(Passengers)"
	case StateLoadingWeather:
		return "Loading(Weather)"
	case StateVerifying:
		return "Verifying"
	case StateReported:
		return "Reported"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
