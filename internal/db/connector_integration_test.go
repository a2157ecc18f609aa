package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/tourload/internal/logging"
	"github.com/vvka-141/tourload/internal/testinfra"
	"github.com/vvka-141/tourload/pkg/tourload"
)

func startTLSServer(t *testing.T, hosts ...string) *testinfra.PostgresContainer {
	t.Helper()
	testinfra.SkipIfShort(t)

	files, err := testinfra.IssueServerTLS(t.TempDir(), hosts...)
	require.NoError(t, err)

	ctx := context.Background()
	ctr, err := testinfra.StartTLSPostgres(ctx, files)
	if err != nil {
		t.Skipf("Docker unavailable: %v", err)
	}
	t.Cleanup(func() { ctr.Terminate(context.Background()) }) //nolint:errcheck
	return ctr
}

func TestStandardConnector_VerifyFull(t *testing.T) {
	ctr := startTLSServer(t)

	cfg, err := ParseConnectionString(ctr.ConnString)
	require.NoError(t, err)
	require.Equal(t, "verify-full", cfg.SSLMode)
	require.NotEmpty(t, cfg.SSLRootCert)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := NewStandardConnector(cfg, logging.NewNullLogger()).Connect(ctx)
	require.NoError(t, err)
	defer pool.Close()

	var ssl bool
	require.NoError(t, pool.QueryRow(ctx, "SELECT ssl FROM pg_stat_ssl WHERE pid = pg_backend_pid()").Scan(&ssl))
	assert.True(t, ssl)
}

func TestStandardConnector_RejectsForeignHostCertificate(t *testing.T) {
	ctr := startTLSServer(t, "db.example.invalid")

	cfg, err := ParseConnectionString(ctr.ConnString)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = NewStandardConnector(cfg, logging.NewNullLogger()).Connect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, tourload.ErrConnectionFailed)
	assert.Contains(t, err.Error(), "server certificate could not be verified")
}
