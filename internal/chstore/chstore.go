// Package chstore holds the ClickHouse connection settings shared by the
// samples writer and the query service.
package chstore

import (
	"Go2FlavorSpectra/internal/config"
	"context"
	"fmt"
	"regexp"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// DefaultTable is the samples table used when none is configured.
const DefaultTable = "tcp_samples"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// TableName validates a configured table name. It is interpolated into
// statements, so only plain identifiers are accepted.
func TableName(name string) (string, error) {
	if name == "" {
		return DefaultTable, nil
	}
	if !tableNamePattern.MatchString(name) {
		return "", fmt.Errorf("invalid clickhouse table name '%s'", name)
	}
	return name, nil
}

// Addr returns the host:port of the configured server.
func Addr(cfg config.ClickHouseConfig) string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// Connect opens an LZ4-compressed native connection and pings the server.
func Connect(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{Addr(cfg)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}
