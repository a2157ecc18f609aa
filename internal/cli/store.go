package cli

import (
	"context"

	"github.com/vvka-141/tourload/internal/config"
	"github.com/vvka-141/tourload/internal/db"
	"github.com/vvka-141/tourload/internal/store/postgres"
	"github.com/vvka-141/tourload/internal/store/sqlite"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// openStore connects to the configured store. The caller must close the
// returned Conn.
func openStore(ctx context.Context, cfg *config.Config, logger tourload.Logger) (tourload.Conn, error) {
	if cfg.Store.Driver == config.DriverSQLite {
		logger.Verbose("Opening SQLite database %s", cfg.Store.SQLitePath)
		s, err := sqlite.Open(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	}

	connConfig, err := db.Resolve(cfg.Connection)
	if err != nil {
		return nil, err
	}
	logger.Verbose("Connection resolved: host=%s port=%d database=%s user=%s sslmode=%s auth=%s",
		connConfig.Host, connConfig.Port, connConfig.Database, connConfig.Username, connConfig.SSLMode, connConfig.AuthMethod)

	connector, err := db.NewConnector(connConfig, logger)
	if err != nil {
		return nil, err
	}
	s, err := postgres.Open(ctx, connector)
	if err != nil {
		return nil, err
	}
	return s, nil
}
