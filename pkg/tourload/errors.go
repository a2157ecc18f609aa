package tourload

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
//
// Example usage:
//
//	_, err := loader.Load(ctx, conn, schema.Passengers, rows)
//	if errors.Is(err, tourload.ErrLoad) {
//	    // the Passengers batch was rolled back
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrParse indicates an input file is malformed or lacks a required column.
	ErrParse = errors.New("parse error")

	// ErrTypeCoercion indicates a field could not be converted to its column type.
	ErrTypeCoercion = errors.New("type coercion error")

	// ErrSchema indicates a table could not be reset.
	ErrSchema = errors.New("schema error")

	// ErrLoad indicates a table batch failed and was rolled back.
	ErrLoad = errors.New("load error")

	// ErrConnectionFailed indicates the store connection could not be established.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")
)

// ParseError reports a malformed input file, typically a missing header column.
type ParseError struct {
	File    string
	Columns []string
	Err     error
}

func (e *ParseError) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("%s: missing required column(s) %s", e.File, strings.Join(e.Columns, ", "))
	}
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// TypeCoercionError reports a field that could not be converted to its target type.
// Row is the 1-based index of the data record (the header is not counted).
type TypeCoercionError struct {
	File string
	Row  int
	Err  error
}

func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("%s: record %d: %v", e.File, e.Row, e.Err)
}

func (e *TypeCoercionError) Unwrap() error { return e.Err }

func (e *TypeCoercionError) Is(target error) bool { return target == ErrTypeCoercion }

// SchemaError reports a failed drop or create of a table.
type SchemaError struct {
	Table string
	Op    string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s table %s: %v", e.Op, e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// LoadError reports the record whose insert failed. Index is 0-based in file order.
// The table's whole batch has been rolled back when this error is returned.
type LoadError struct {
	Table string
	Index int
	Err   error
}

func (e *LoadError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("load %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("load %s: record %d: %v", e.Table, e.Index, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrLoad }

// ConnectionError reports a store that could not be reached.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect to %s: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnectionFailed }

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrSchema):
		return ExitSchemaError
	case errors.Is(err, ErrLoad):
		return ExitLoadFailed
	case errors.Is(err, ErrParse), errors.Is(err, ErrTypeCoercion):
		return ExitInputError
	}

	errStr := err.Error()
	if isUsageError(errStr) {
		return ExitUsageError
	}

	// Check for common connection error patterns
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}

// isUsageError recognizes the argument and flag errors produced by cobra.
func isUsageError(msg string) bool {
	for _, prefix := range []string{"unknown flag", "unknown shorthand flag", "unknown command", "accepts ", "required flag", "invalid argument"} {
		if strings.HasPrefix(msg, prefix) {
			return true
		}
	}
	return false
}
