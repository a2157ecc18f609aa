package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/tourload/internal/retry"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// tokenExpiryWarning is the remaining lifetime below which a token is reported.
const tokenExpiryWarning = 5 * time.Minute

// TokenBasedConnector authenticates with a short-lived token (AWS IAM,
// Azure Entra ID) used as the PostgreSQL password. A fresh token is acquired
// for every attempt.
type TokenBasedConnector struct {
	config        *tourload.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	logger        tourload.Logger
	retryExecutor *retry.Executor
}

// NewTokenBasedConnector creates a connector. providerName appears in log and
// error messages.
func NewTokenBasedConnector(config *tourload.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger tourload.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		logger:        logger,
		retryExecutor: newRetryExecutor(logger),
	}
}

// Connect implements tourload.Connector.
func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}
		c.logger.Verbose("Acquired %s token from %s", c.providerName, c.tokenProvider)
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
		}

		withToken := *c.config
		withToken.Password = token

		pool, err = openPool(ctx, BuildConnectionString(&withToken), c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, &tourload.ConnectionError{Target: target(c.config), Err: err}
	}
	return pool, nil
}
