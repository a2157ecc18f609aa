package db

import (
	"fmt"

	"github.com/vvka-141/tourload/internal/config"
	"github.com/vvka-141/tourload/pkg/tourload"
)

// DefaultAppName identifies tourload sessions in pg_stat_activity.
const DefaultAppName = "tourload"

// Resolve turns the configured connection settings into a validated
// ConnectionConfig.
//
// A connection string (TOURLOAD_CONNECTION_STRING or DATABASE_URL) wins over
// the granular fields; granular secrets still fill in what the string omits.
// Azure Entra ID is selected when auth_method says so, or when it is unset
// and an Azure tenant or client ID is configured.
func Resolve(c config.ConnectionConfig) (*tourload.ConnectionConfig, error) {
	var cfg *tourload.ConnectionConfig

	if c.ConnectionString != "" {
		parsed, err := ParseConnectionString(c.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("invalid connection string: %w", err)
		}
		cfg = parsed
		if cfg.Password == "" {
			cfg.Password = c.Password
		}
		if cfg.SSLRootCert == "" {
			cfg.SSLRootCert = c.SSLRootCert
		}
	} else {
		cfg = &tourload.ConnectionConfig{
			Host:             c.Host,
			Port:             c.Port,
			Database:         c.Database,
			Username:         c.Username,
			Password:         c.Password,
			SSLMode:          c.SSLMode,
			SSLRootCert:      c.SSLRootCert,
			AdditionalParams: make(map[string]string),
		}
		if cfg.Port == 0 {
			cfg.Port = tourload.DefaultPort
		}
		if cfg.SSLMode == "" {
			cfg.SSLMode = tourload.DefaultSSLMode
		}
	}

	if cfg.AppName == "" {
		cfg.AppName = DefaultAppName
	}

	method, err := tourload.ParseAuthMethod(c.AuthMethod)
	if err != nil {
		return nil, err
	}
	if c.AuthMethod == "" && (c.AzureTenantID != "" || c.AzureClientID != "") {
		method = tourload.AuthMethodAzureEntraID
	}
	cfg.AuthMethod = method
	cfg.AzureTenantID = c.AzureTenantID
	cfg.AzureClientID = c.AzureClientID
	cfg.AzureClientSecret = c.AzureClientSecret
	cfg.AWSRegion = c.AWSRegion
	cfg.GoogleInstance = c.GoogleInstance

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
