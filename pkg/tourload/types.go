package tourload

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// DateLayout is the on-disk form of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// NewDate returns the first day of the given month.
func NewDate(year, month int) Date {
	return Date{time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD, with an optional midnight time part
// as written by spreadsheet and dataframe tools.
func ParseDate(s string) (Date, error) {
	for _, layout := range []string{DateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}, nil
		}
	}
	return Date{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", s)
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Record is a row destined for a store table.
// Values returns the non-key column values in schema order:
// int64 for integer columns, float64 for real columns and Date for dates.
type Record interface {
	Values() []any
}

// PassengerRecord is the number of foreign passengers arriving in one month.
type PassengerRecord struct {
	Year       int   `csv:"year"`
	Month      int   `csv:"month"`
	Date       Date  `csv:"date"`
	Passengers int64 `csv:"passengers"`
}

// Values implements Record.
func (r PassengerRecord) Values() []any {
	return []any{int64(r.Year), int64(r.Month), r.Date, r.Passengers}
}

// Validate checks the date names the first day of the record's month.
func (r PassengerRecord) Validate() error {
	return checkMonthDate(r.Year, r.Month, r.Date)
}

// WeatherRecord is one month of observations at a single station.
type WeatherRecord struct {
	Year          int     `csv:"year"`
	Month         int     `csv:"month"`
	Date          Date    `csv:"date"`
	MeanTemp      float64 `csv:"mean_temp"`
	MaxTemp       float64 `csv:"max_temp"`
	MinTemp       float64 `csv:"min_temp"`
	Precipitation float64 `csv:"precipitation"`
}

// Values implements Record.
func (r WeatherRecord) Values() []any {
	return []any{int64(r.Year), int64(r.Month), r.Date, r.MeanTemp, r.MaxTemp, r.MinTemp, r.Precipitation}
}

// Validate checks the date and that every measurement is a finite number.
// Temperature order is not checked here; see TemperaturesOrdered.
func (r WeatherRecord) Validate() error {
	if err := checkMonthDate(r.Year, r.Month, r.Date); err != nil {
		return err
	}
	for _, m := range []struct {
		column string
		value  float64
	}{
		{"mean_temp", r.MeanTemp},
		{"max_temp", r.MaxTemp},
		{"min_temp", r.MinTemp},
		{"precipitation", r.Precipitation},
	} {
		if math.IsNaN(m.value) || math.IsInf(m.value, 0) {
			return fmt.Errorf("%s: %v is not a finite number", m.column, m.value)
		}
	}
	return nil
}

// An out-of-range month is left to the store's CHECK constraint.
func checkMonthDate(year, month int, d Date) error {
	if month < 1 || month > 12 {
		return nil
	}
	if want := NewDate(year, month); !d.Equal(want.Time) {
		return fmt.Errorf("date %s is not the first day of %d-%02d", d, year, month)
	}
	return nil
}

// TemperaturesOrdered reports whether min <= mean <= max holds.
func (r WeatherRecord) TemperaturesOrdered() bool {
	return r.MinTemp <= r.MeanTemp && r.MeanTemp <= r.MaxTemp
}

// YearRange is an inclusive filter on the record year. A zero bound is open.
type YearRange struct {
	From int `yaml:"from"`
	To   int `yaml:"to"`
}

// Contains reports whether year falls inside the range.
func (y YearRange) Contains(year int) bool {
	if y.From != 0 && year < y.From {
		return false
	}
	if y.To != 0 && year > y.To {
		return false
	}
	return true
}

// Validate checks the bounds are ordered.
func (y YearRange) Validate() error {
	if y.From != 0 && y.To != 0 && y.From > y.To {
		return fmt.Errorf("year range %d-%d is inverted: %w", y.From, y.To, ErrInvalidConfig)
	}
	return nil
}

// ChecksumSet is the lightweight fingerprint of a table: its row count and
// the sum of every numeric column. Integer and real sums are kept apart so
// integer metrics can be compared exactly.
type ChecksumSet struct {
	Table    string
	RowCount int64

	// Columns lists the summed columns in table order.
	Columns  []string
	IntSums  map[string]int64
	RealSums map[string]float64
}

// MetricKind distinguishes exact integer metrics from tolerance-compared reals.
type MetricKind int

const (
	MetricInteger MetricKind = iota
	MetricReal
)

// MetricResult is the comparison of one checksum metric.
type MetricResult struct {
	Name         string
	Kind         MetricKind
	ExpectedInt  int64
	ActualInt    int64
	ExpectedReal float64
	ActualReal   float64
	Passed       bool
}

// LoadResult is the outcome of loading and verifying one table.
type LoadResult struct {
	Table        string
	RowsInserted int
	Expected     ChecksumSet
	Actual       ChecksumSet
	Metrics      []MetricResult

	// LoadErr is set when the table's batch was rolled back.
	LoadErr error
}

// Passed reports whether the table loaded and every metric matched.
func (r LoadResult) Passed() bool {
	if r.LoadErr != nil {
		return false
	}
	for _, m := range r.Metrics {
		if !m.Passed {
			return false
		}
	}
	return true
}

// Mismatches returns the metrics that failed comparison.
func (r LoadResult) Mismatches() []MetricResult {
	var out []MetricResult
	for _, m := range r.Metrics {
		if !m.Passed {
			out = append(out, m)
		}
	}
	return out
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// SSLRootCert is a CA bundle used by verify-ca and verify-full.
	SSLRootCert string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// Azure Entra ID authentication parameters (used when AuthMethod is AuthMethodAzureEntraID)
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used (env vars, managed identity, CLI, etc.)
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string
}

// Validate checks that the connection has enough information to dial.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	if c.Host == "" && c.AuthMethod != AuthMethodGoogleIAM {
		errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
	}
	if c.Database == "" {
		errs = append(errs, fmt.Errorf("database is required: %w", ErrInvalidConfig))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range: %w", c.Port, ErrInvalidConfig))
	}
	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}

	return errors.Join(errs...)
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps a config value to an AuthMethod. Empty means standard.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch s {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}
