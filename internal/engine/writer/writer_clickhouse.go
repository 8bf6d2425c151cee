package writer

import (
	"Go2FlavorSpectra/internal/chstore"
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/factory"
	"Go2FlavorSpectra/internal/model"
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

const createSamplesTableStatement = `
CREATE TABLE IF NOT EXISTS %s (
    InsertedAt    DateTime,
    TestName      String,
    TCPFlavor     String,
    TimeIter      UInt64,
    BitsPerSecond Float64,
    RTTMs         Float64,
    CwndSizeBytes Int64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(InsertedAt)
ORDER BY (TestName, TCPFlavor, InsertedAt, TimeIter);
`

func init() {
	factory.RegisterWriter("clickhouse", func(def config.WriterDef) (model.Writer, error) {
		return NewClickHouseWriter(def.ClickHouse)
	})
}

// ClickHouseWriter implements the model.Writer interface for ClickHouse.
type ClickHouseWriter struct {
	conn  driver.Conn
	addr  string
	table string
}

// NewClickHouseWriter connects to ClickHouse and ensures the samples table exists.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (*ClickHouseWriter, error) {
	table, err := chstore.TableName(cfg.Table)
	if err != nil {
		return nil, err
	}

	conn, err := chstore.Connect(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	if err := conn.Exec(context.Background(), fmt.Sprintf(createSamplesTableStatement, table)); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	log.Infof("Successfully connected to ClickHouse and ensured table '%s' exists.", table)

	return &ClickHouseWriter{conn: conn, addr: chstore.Addr(cfg), table: table}, nil
}

// Name implements model.Writer.
func (w *ClickHouseWriter) Name() string {
	return fmt.Sprintf("clickhouse:%s/%s", w.addr, w.table)
}

// Write inserts every sample into the samples table in one batch.
func (w *ClickHouseWriter) Write(ctx context.Context, dataset model.Dataset) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO "+w.table)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	insertedAt := time.Now()
	for _, s := range dataset {
		err = batch.Append(
			insertedAt,
			s.Test,
			s.Flavor,
			s.TimeIndex,
			s.ThroughputBps,
			s.RTTMs,
			s.CwndBytes,
		)
		if err != nil {
			return fmt.Errorf("failed to append sample to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.Infof("Wrote %d samples to ClickHouse table '%s'", len(dataset), w.table)
	return nil
}

// Close closes the ClickHouse connection.
func (w *ClickHouseWriter) Close() error {
	return w.conn.Close()
}
