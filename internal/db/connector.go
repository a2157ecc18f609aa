// Package db establishes PostgreSQL connection pools for every supported
// authentication method.
package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/tourload/internal/retry"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// Pool settings. A run uses exactly one connection; the spare slot serves the
// health check that pgxpool performs on acquire.
const (
	DefaultMaxConns        = 2
	DefaultMaxConnIdleTime = 5 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger tourload.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = 0
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("server notice: %s", notice.Message)
	}
}

func newRetryExecutor(logger tourload.Logger) *retry.Executor {
	strategy := retry.NewExponentialBackoff(tourload.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(tourload.DefaultRetryInitialDelay),
		retry.WithMaxDelay(tourload.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Verbose("connect attempt %d failed (%v), retrying in %v", attempt+1, err, delay.Round(time.Millisecond))
		})
}

// openPool parses connStr, opens a pool and pings it once.
func openPool(ctx context.Context, connStr string, config *tourload.ConnectionConfig, logger tourload.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	configurePool(poolConfig, logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, config.Host, config.Port, config.Database)
	}
	return pool, nil
}

// StandardConnector authenticates with username and password and retries
// transient failures.
type StandardConnector struct {
	config        *tourload.ConnectionConfig
	logger        tourload.Logger
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a connector with the default retry policy.
func NewStandardConnector(config *tourload.ConnectionConfig, logger tourload.Logger) *StandardConnector {
	return &StandardConnector{
		config:        config,
		logger:        logger,
		retryExecutor: newRetryExecutor(logger),
	}
}

// Connect implements tourload.Connector.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	connStr := BuildConnectionString(c.config)

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, connStr, c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, &tourload.ConnectionError{Target: target(c.config), Err: err}
	}
	return pool, nil
}

// NewConnector returns the connector for config.AuthMethod.
func NewConnector(config *tourload.ConnectionConfig, logger tourload.Logger) (tourload.Connector, error) {
	switch config.AuthMethod {
	case tourload.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case tourload.AuthMethodAWSIAM:
		return newAWSConnector(config, logger)
	case tourload.AuthMethodGoogleIAM:
		return newGoogleConnector(config, logger)
	case tourload.AuthMethodAzureEntraID:
		return newAzureConnector(config, logger)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, tourload.ErrUnsupportedAuthMethod)
	}
}

func target(config *tourload.ConnectionConfig) string {
	if config.GoogleInstance != "" && config.AuthMethod == tourload.AuthMethodGoogleIAM {
		return config.GoogleInstance + "/" + config.Database
	}
	return fmt.Sprintf("%s:%d/%s", config.Host, config.Port, config.Database)
}

// wrapConnectionError adds actionable guidance to raw pgx connection errors.
func wrapConnectionError(err error, host string, port int, database string) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", host, port)

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - PostgreSQL is not running (check: pg_isready -h %s -p %d)
  - Wrong db_server or db_port
  - Firewall blocking the connection

Original error: %w`, addr, host, port, err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - db_server is misspelled
  - DNS is not configured or reachable

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed"):
		return fmt.Errorf(`password authentication failed for database "%s"

Possible causes:
  - Wrong db_password (check .env)
  - Wrong db_username
  - User does not have access to the database

Original error: %w`, database, err)

	case strings.Contains(errStr, "does not exist"):
		return fmt.Errorf(`database "%s" does not exist

Create it first (the pipeline only recreates tables):
  createdb %s

Original error: %w`, database, database, err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Firewall silently dropping packets
  - Wrong host/port (server not listening)

Original error: %w`, addr, err)

	case strings.Contains(errStr, "x509") || strings.Contains(errStr, "certificate"):
		return fmt.Errorf(`server certificate could not be verified for %s

Possible causes:
  - The server certificate is not issued for this host name
  - The issuing CA is not trusted (set sslrootcert to the CA bundle)

Only lower sslmode below verify-full for servers you control.

Original error: %w`, host, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server does not accept SSL connections but sslmode requires it
  - TLS version or cipher mismatch

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - max_connections limit reached on the server
  - Stale connections from earlier runs

Original error: %w`, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

// newAWSConnector creates a token-based connector with the AWS IAM token provider.
func newAWSConnector(config *tourload.ConnectionConfig, logger tourload.Logger) (tourload.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}
	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM", logger), nil
}

// newGoogleConnector creates a connector for Google Cloud SQL IAM authentication.
func newGoogleConnector(config *tourload.ConnectionConfig, logger tourload.Logger) (tourload.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires google_instance (project:region:instance): %w", tourload.ErrInvalidConfig)
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires db_username: %w", tourload.ErrInvalidConfig)
	}
	return NewGoogleCloudSQLConnector(config, logger), nil
}

// newAzureConnector uses Service Principal credentials when tenant, client
// and secret are all set, otherwise the DefaultAzureCredential chain.
func newAzureConnector(config *tourload.ConnectionConfig, logger tourload.Logger) (tourload.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure token provider: %w", err)
	}
	return NewTokenBasedConnector(config, tokenProvider, "Azure", logger), nil
}
