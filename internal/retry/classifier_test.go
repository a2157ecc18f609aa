package retry

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPostgreSQLErrorClassifier_IsTransient(t *testing.T) {
	classifier := NewPostgreSQLErrorClassifier()

	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"nil", nil, false},
		{"connection_failure (08006)", &pgconn.PgError{Code: "08006"}, true},
		{"sqlclient_unable_to_establish_sqlconnection (08001)", &pgconn.PgError{Code: "08001"}, true},
		{"too_many_connections (53300)", &pgconn.PgError{Code: "53300"}, true},
		{"cannot_connect_now (57P03)", &pgconn.PgError{Code: "57P03"}, true},
		{"admin_shutdown (57P01)", &pgconn.PgError{Code: "57P01"}, true},
		{"invalid_password (28P01)", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}, false},
		{"invalid_catalog_name (3D000)", &pgconn.PgError{Code: "3D000"}, false},
		{"check_violation (23514)", &pgconn.PgError{Code: "23514"}, false},
		{"wrapped pg error", fmt.Errorf("connect: %w", &pgconn.PgError{Code: "08006"}), true},
		{"pg error whose text looks transient", &pgconn.PgError{Code: "42501", Message: "connection refused by policy"}, false},
		{"ECONNREFUSED", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		{"ECONNRESET", &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, true},
		{"EHOSTUNREACH", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.EHOSTUNREACH}, true},
		{"temporary DNS failure", &net.DNSError{Err: "server misbehaving", Name: "db", IsTemporary: true}, true},
		{"unknown host", &net.DNSError{Err: "no such host", Name: "db", IsNotFound: true}, false},
		{"message: connection refused", errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"), true},
		{"message: i/o timeout", errors.New("read tcp: i/o timeout"), true},
		{"message: unexpected EOF", errors.New("unexpected EOF"), true},
		{"fatal message", errors.New("invalid configuration"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.transient, classifier.IsTransient(tt.err))
		})
	}
}
