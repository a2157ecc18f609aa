package tourload_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/tourload/pkg/tourload"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, tourload.ExitSuccess},
		{"general error", errors.New("something went wrong"), tourload.ExitGeneralError},
		{"unknown flag", errors.New("unknown flag: --foo"), tourload.ExitUsageError},
		{"accepts args", errors.New("accepts 0 arg(s), received 1"), tourload.ExitUsageError},
		{"invalid config", fmt.Errorf("tolerance: %w", tourload.ErrInvalidConfig), tourload.ExitConfigError},
		{"unsupported auth", tourload.ErrUnsupportedAuthMethod, tourload.ExitConfigError},
		{"connection error", &tourload.ConnectionError{Target: "db:5432", Err: errors.New("boom")}, tourload.ExitConnectionError},
		{"connection refused text", errors.New("dial tcp: connection refused"), tourload.ExitConnectionError},
		{"schema error", &tourload.SchemaError{Table: "Weather", Op: "create", Err: errors.New("exists")}, tourload.ExitSchemaError},
		{"load error", &tourload.LoadError{Table: "Weather", Index: 4, Err: errors.New("check")}, tourload.ExitLoadFailed},
		{"parse error", &tourload.ParseError{File: "a.csv", Columns: []string{"year"}}, tourload.ExitInputError},
		{"coercion error", &tourload.TypeCoercionError{File: "a.csv", Row: 2, Err: errors.New("bad int")}, tourload.ExitInputError},
		{"wrapped load error", fmt.Errorf("run: %w", &tourload.LoadError{Table: "Passengers", Index: 0}), tourload.ExitLoadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tourload.ExitCodeForError(tt.err))
		})
	}
}

func TestErrorMessagesCarryContext(t *testing.T) {
	cause := errors.New("duplicate key")

	loadErr := &tourload.LoadError{Table: "Passengers", Index: 7, Err: cause}
	assert.Equal(t, "load Passengers: record 7: duplicate key", loadErr.Error())
	assert.ErrorIs(t, loadErr, cause)
	assert.ErrorIs(t, loadErr, tourload.ErrLoad)

	commitErr := &tourload.LoadError{Table: "Weather", Index: -1, Err: cause}
	assert.Equal(t, "load Weather: duplicate key", commitErr.Error())

	parseErr := &tourload.ParseError{File: "weather_clean.csv", Columns: []string{"mean_temp", "min_temp"}}
	assert.Equal(t, "weather_clean.csv: missing required column(s) mean_temp, min_temp", parseErr.Error())
	assert.ErrorIs(t, parseErr, tourload.ErrParse)

	coercionErr := &tourload.TypeCoercionError{File: "p.csv", Row: 3, Err: cause}
	assert.Equal(t, "p.csv: record 3: duplicate key", coercionErr.Error())
	assert.ErrorIs(t, coercionErr, tourload.ErrTypeCoercion)

	schemaErr := &tourload.SchemaError{Table: "Weather", Op: "create", Err: cause}
	assert.Equal(t, "create table Weather: duplicate key", schemaErr.Error())
	assert.ErrorIs(t, schemaErr, tourload.ErrSchema)
}
