// Package config loads run settings from tourload.yaml, a .env file and the
// process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/vvka-141/tourload/internal/source"
	"github.com/vvka-141/tourload/pkg/tourload"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const (
	ConfigFileName = "tourload.yaml"
	DotEnvFileName = ".env"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Environment variables read by ApplyEnv.
const (
	EnvServer           = "db_server"
	EnvDatabase         = "db_name"
	EnvUsername         = "db_username"
	EnvPassword         = "db_password"
	EnvPort             = "db_port"
	EnvConnectionString = "TOURLOAD_CONNECTION_STRING"
	EnvDatabaseURL      = "DATABASE_URL"
	EnvAzureTenantID    = "AZURE_TENANT_ID"
	EnvAzureClientID    = "AZURE_CLIENT_ID"
	EnvAzureSecret      = "AZURE_CLIENT_SECRET"
	EnvAWSRegion        = "AWS_REGION"
)

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	SSLRootCert    string `yaml:"sslrootcert,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`

	// Secrets come from the environment only.
	Password          string `yaml:"-"`
	AzureClientSecret string `yaml:"-"`

	// ConnectionString, when set, replaces the granular fields.
	ConnectionString string `yaml:"-"`
}

type StoreConfig struct {
	Driver     string `yaml:"driver"`
	SQLitePath string `yaml:"sqlite_path"`
}

// DatasetPaths locates the passenger and weather files.
type DatasetPaths struct {
	Passengers string `yaml:"passengers"`
	Weather    string `yaml:"weather"`
}

type Config struct {
	Store      StoreConfig        `yaml:"store"`
	Connection ConnectionConfig   `yaml:"connection"`
	Inputs     DatasetPaths       `yaml:"inputs"`
	Raw        DatasetPaths       `yaml:"raw"`
	Years      tourload.YearRange `yaml:"years"`
	S3         source.S3Config    `yaml:"s3"`

	// Tolerance is the absolute tolerance for real-valued checksum sums.
	Tolerance   float64 `yaml:"tolerance"`
	Timeout     string  `yaml:"timeout"`
	MetricsFile string  `yaml:"metrics_file"`

	// PlotsDir, when set, makes analyze write charts there.
	PlotsDir string `yaml:"plots_dir"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Store: StoreConfig{Driver: DriverPostgres, SQLitePath: "tourload.db"},
		Connection: ConnectionConfig{
			Port:    tourload.DefaultPort,
			SSLMode: tourload.DefaultSSLMode,
		},
		Inputs: DatasetPaths{Passengers: "passengers_clean.csv", Weather: "weather_clean.csv"},
		Raw:    DatasetPaths{Passengers: "data/passengers_raw.csv", Weather: "data/weather_raw.txt"},
		Years:  tourload.YearRange{From: tourload.DefaultYearFrom, To: tourload.DefaultYearTo},

		Tolerance: tourload.DefaultTolerance,
	}
}

// Load reads path over the defaults. A missing file returns ErrConfigNotFound.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %w", path, tourload.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides configuration with environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	conn := &c.Connection

	for env, field := range map[string]*string{
		EnvServer:      &conn.Host,
		EnvDatabase:    &conn.Database,
		EnvUsername:    &conn.Username,
		EnvPassword:    &conn.Password,
		EnvAzureSecret: &conn.AzureClientSecret,
	} {
		if v := getenv(env); v != "" {
			*field = v
		}
	}

	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid $%s value %q: must be an integer: %w", EnvPort, v, tourload.ErrInvalidConfig)
		}
		conn.Port = port
	}

	if v := getenv(EnvConnectionString); v != "" {
		conn.ConnectionString = v
	} else if v := getenv(EnvDatabaseURL); v != "" {
		conn.ConnectionString = v
	}

	if conn.AzureTenantID == "" {
		conn.AzureTenantID = getenv(EnvAzureTenantID)
	}
	if conn.AzureClientID == "" {
		conn.AzureClientID = getenv(EnvAzureClientID)
	}
	if conn.AWSRegion == "" {
		conn.AWSRegion = getenv(EnvAWSRegion)
	}
	return nil
}

// TimeoutDuration parses Timeout. Empty means no overall timeout.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, tourload.ErrInvalidConfig)
	}
	return d, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverPostgres:
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			errs = append(errs, fmt.Errorf("store.sqlite_path is required for the sqlite driver: %w", tourload.ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q (want %s or %s): %w", c.Store.Driver, DriverPostgres, DriverSQLite, tourload.ErrInvalidConfig))
	}

	if c.Inputs.Passengers == "" || c.Inputs.Weather == "" {
		errs = append(errs, fmt.Errorf("inputs.passengers and inputs.weather are required: %w", tourload.ErrInvalidConfig))
	}
	if c.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("tolerance %v must not be negative: %w", c.Tolerance, tourload.ErrInvalidConfig))
	}
	if err := c.Years.Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	}
	if _, err := tourload.ParseAuthMethod(c.Connection.AuthMethod); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
