package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/tourload/pkg/tourload"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_AllFields(t *testing.T) {
	path := writeConfig(t, `store:
  driver: sqlite
  sqlite_path: out/tourism.db
connection:
  host: tourism.postgres.database.azure.com
  port: 6432
  username: loader
  database: tourism
  sslmode: verify-full
  sslrootcert: /etc/ssl/ca.pem
  auth_method: azure
inputs:
  passengers: s3://coursework/passengers_clean.csv
  weather: clean/weather_clean.csv
raw:
  passengers: raw/passengers.csv
  weather: raw/weather.txt
years:
  from: 2015
  to: 2019
s3:
  region: eu-west-1
  endpoint: http://localhost:9000
  path_style: true
tolerance: 0.5
timeout: 2m
metrics_file: metrics/tourload.prom
plots_dir: charts
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "out/tourism.db", cfg.Store.SQLitePath)
	assert.Equal(t, "tourism.postgres.database.azure.com", cfg.Connection.Host)
	assert.Equal(t, 6432, cfg.Connection.Port)
	assert.Equal(t, "loader", cfg.Connection.Username)
	assert.Equal(t, "tourism", cfg.Connection.Database)
	assert.Equal(t, "/etc/ssl/ca.pem", cfg.Connection.SSLRootCert)
	assert.Equal(t, "azure", cfg.Connection.AuthMethod)
	assert.Equal(t, "s3://coursework/passengers_clean.csv", cfg.Inputs.Passengers)
	assert.Equal(t, "raw/weather.txt", cfg.Raw.Weather)
	assert.Equal(t, tourload.YearRange{From: 2015, To: 2019}, cfg.Years)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)
	assert.True(t, cfg.S3.PathStyle)
	assert.Equal(t, 0.5, cfg.Tolerance)
	assert.Equal(t, "metrics/tourload.prom", cfg.MetricsFile)
	assert.Equal(t, "charts", cfg.PlotsDir)

	d, err := cfg.TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, d)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MinimalYAMLKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "connection:\n  host: db.local\n"))
	require.NoError(t, err)

	assert.Equal(t, "db.local", cfg.Connection.Host)
	assert.Equal(t, tourload.DefaultPort, cfg.Connection.Port)
	assert.Equal(t, "verify-full", cfg.Connection.SSLMode)
	assert.Equal(t, DriverPostgres, cfg.Store.Driver)
	assert.Equal(t, tourload.DefaultTolerance, cfg.Tolerance)
	assert.Equal(t, "passengers_clean.csv", cfg.Inputs.Passengers)
	assert.Equal(t, tourload.YearRange{From: 2012, To: 2022}, cfg.Years)
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	assert.True(t, errors.Is(err, ErrConfigNotFound))
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "connection: [unclosed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, tourload.ErrInvalidConfig)
}

func TestLoad_PasswordNotReadFromYAML(t *testing.T) {
	cfg, err := Load(writeConfig(t, "connection:\n  password: hunter2\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Connection.Password)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Connection.Host = "from-yaml"

	err := cfg.ApplyEnv(envMap(map[string]string{
		EnvServer:      "from-env.example.com",
		EnvDatabase:    "tourism",
		EnvUsername:    "etl",
		EnvPassword:    "s3cret",
		EnvPort:        "5433",
		EnvAzureSecret: "azsecret",
		EnvAWSRegion:   "eu-north-1",
	}))
	require.NoError(t, err)

	c := cfg.Connection
	assert.Equal(t, "from-env.example.com", c.Host)
	assert.Equal(t, "tourism", c.Database)
	assert.Equal(t, "etl", c.Username)
	assert.Equal(t, "s3cret", c.Password)
	assert.Equal(t, 5433, c.Port)
	assert.Equal(t, "azsecret", c.AzureClientSecret)
	assert.Equal(t, "eu-north-1", c.AWSRegion)
	assert.Empty(t, c.ConnectionString)
}

func TestApplyEnv_ConnectionStringPrecedence(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		EnvConnectionString: "postgres://a@one/db",
		EnvDatabaseURL:      "postgres://b@two/db",
	})))
	assert.Equal(t, "postgres://a@one/db", cfg.Connection.ConnectionString)

	cfg = Default()
	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{EnvDatabaseURL: "postgres://b@two/db"})))
	assert.Equal(t, "postgres://b@two/db", cfg.Connection.ConnectionString)
}

func TestApplyEnv_YAMLWinsForAzureIDs(t *testing.T) {
	cfg := Default()
	cfg.Connection.AzureTenantID = "yaml-tenant"

	require.NoError(t, cfg.ApplyEnv(envMap(map[string]string{
		EnvAzureTenantID: "env-tenant",
		EnvAzureClientID: "env-client",
	})))
	assert.Equal(t, "yaml-tenant", cfg.Connection.AzureTenantID)
	assert.Equal(t, "env-client", cfg.Connection.AzureClientID)
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	err := Default().ApplyEnv(envMap(map[string]string{EnvPort: "54x"}))
	assert.ErrorIs(t, err, tourload.ErrInvalidConfig)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), DotEnvFileName)
	require.NoError(t, os.WriteFile(path, []byte("db_server=dotenv-host\ndb_name=fromfile\n"), 0600))

	t.Setenv(EnvServer, "already-set")
	t.Setenv(EnvDatabase, "")
	require.NoError(t, os.Unsetenv(EnvDatabase))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "already-set", os.Getenv(EnvServer), ".env must not override the environment")
	assert.Equal(t, "fromfile", os.Getenv(EnvDatabase))
}

func TestLoadDotEnv_Missing(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), DotEnvFileName)))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown driver", func(c *Config) { c.Store.Driver = "oracle" }, false},
		{"sqlite without path", func(c *Config) { c.Store.Driver = DriverSQLite; c.Store.SQLitePath = "" }, false},
		{"negative tolerance", func(c *Config) { c.Tolerance = -0.1 }, false},
		{"inverted years", func(c *Config) { c.Years = tourload.YearRange{From: 2020, To: 2010} }, false},
		{"bad timeout", func(c *Config) { c.Timeout = "soon" }, false},
		{"missing input", func(c *Config) { c.Inputs.Weather = "" }, false},
		{"bad auth method", func(c *Config) { c.Connection.AuthMethod = "kerberos" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Equal(t, tourload.ExitConfigError, tourload.ExitCodeForError(err))
		})
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Store.Driver = "oracle"
	cfg.Tolerance = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
	assert.Contains(t, err.Error(), "tolerance")
}
