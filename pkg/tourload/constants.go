package tourload

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Pipeline completed (checksum mismatches are reported, not failed)
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (invalid arguments or flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration
	ExitConnectionError = 11 // Failed to connect to the store
	ExitSchemaError     = 12 // Table reset failed
	ExitLoadFailed      = 13 // A table batch was rolled back
	ExitInputError      = 14 // Input file missing, malformed or uncoercible
)

const (
	// DefaultTolerance is the absolute tolerance applied to real-valued sums.
	DefaultTolerance = 0.01

	// DefaultRetryInitialDelay is the default initial delay before the first connection retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between connection retries.
	DefaultRetryMaxDelay = 10 * time.Second

	// DefaultRetryMaxAttempts is the default number of connection retries.
	DefaultRetryMaxAttempts = 3

	// DefaultSSLMode requires an encrypted channel and a validated server certificate.
	DefaultSSLMode = "verify-full"

	// DefaultPort is the PostgreSQL default port.
	DefaultPort = 5432

	// DefaultYearFrom and DefaultYearTo bound the study period.
	DefaultYearFrom = 2012
	DefaultYearTo   = 2022
)

// Table names in the store.
const (
	TablePassengers = "Passengers"
	TableWeather    = "Weather"
)
