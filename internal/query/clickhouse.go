package query

import (
	"Go2FlavorSpectra/internal/chstore"
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/model"
	"context"
	"fmt"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// clickhouseQuerier implements the Querier interface for the samples table
// filled by the clickhouse writer. Only the most recent insertion is read.
type clickhouseQuerier struct {
	conn  driver.Conn
	table string
}

// NewClickHouseQuerier creates a new querier for ClickHouse. The returned
// querier holds a connection; it implements io.Closer.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	table, err := chstore.TableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	conn, err := chstore.Connect(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn, table: table}, nil
}

// Close closes the ClickHouse connection.
func (q *clickhouseQuerier) Close() error {
	return q.conn.Close()
}

func (q *clickhouseQuerier) latest() string {
	return fmt.Sprintf("InsertedAt = (SELECT max(InsertedAt) FROM %s)", q.table)
}

// Runs lists the runs of the latest aggregation.
func (q *clickhouseQuerier) Runs(ctx context.Context) ([]RunInfo, error) {
	stmt := fmt.Sprintf(`
		SELECT TestName, TCPFlavor, count() AS Samples
		FROM %s
		WHERE %s
		GROUP BY TestName, TCPFlavor
		ORDER BY TestName, TCPFlavor`, q.table, q.latest())

	rows, err := q.conn.Query(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var info RunInfo
		var n uint64
		if err := rows.Scan(&info.Test, &info.Flavor, &n); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		info.Samples = int(n)
		info.Condition = model.ConditionOf(info.Test)
		runs = append(runs, info)
	}
	return runs, rows.Err()
}

// Samples filters test and flavor in the database. The derived condition
// filters are applied on the returned rows.
func (q *clickhouseQuerier) Samples(ctx context.Context, f Filter) ([]ChartRow, error) {
	var queryBuilder strings.Builder
	fmt.Fprintf(&queryBuilder, `
		SELECT TestName, TCPFlavor, TimeIter, BitsPerSecond, RTTMs, CwndSizeBytes
		FROM %s`, q.table)

	whereClauses := []string{q.latest()}
	args := []interface{}{}
	if f.Test != "" {
		whereClauses = append(whereClauses, "TestName = ?")
		args = append(args, f.Test)
	}
	if f.Flavor != "" {
		whereClauses = append(whereClauses, "TCPFlavor = ?")
		args = append(args, f.Flavor)
	}
	queryBuilder.WriteString(" WHERE " + strings.Join(whereClauses, " AND "))
	queryBuilder.WriteString(" ORDER BY TestName, TCPFlavor, TimeIter")

	rows, err := q.conn.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	out := []ChartRow{}
	for rows.Next() {
		var s model.Sample
		if err := rows.Scan(&s.Test, &s.Flavor, &s.TimeIndex, &s.ThroughputBps, &s.RTTMs, &s.CwndBytes); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		if f.Match(s) {
			out = append(out, NewChartRow(s))
		}
	}
	return out, rows.Err()
}
