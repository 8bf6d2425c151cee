package writer

import (
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/factory"
	"Go2FlavorSpectra/internal/model"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xitongsys/parquet-go-source/local"
	parquetwriter "github.com/xitongsys/parquet-go/writer"
)

const defaultParquetParallelism = 4

func init() {
	factory.RegisterWriter("parquet", func(def config.WriterDef) (model.Writer, error) {
		if def.Parquet.Path == "" {
			return nil, errors.New("parquet writer requires path")
		}
		return NewParquetWriter(def.Parquet.Path, def.Parquet.Parallelism), nil
	})
}

// ParquetRow is the parquet schema of a sample. Column names match the CSV
// contract.
type ParquetRow struct {
	TestName      string  `parquet:"name=test_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	TCPFlavor     string  `parquet:"name=tcp_flavor, type=BYTE_ARRAY, convertedtype=UTF8"`
	TimeIter      int64   `parquet:"name=time_iter, type=INT64"`
	BitsPerSecond float64 `parquet:"name=bits_per_second, type=DOUBLE"`
	RTTMs         float64 `parquet:"name=rtt_ms, type=DOUBLE"`
	CwndSizeBytes int64   `parquet:"name=cwnd_size_bytes, type=INT64"`
}

// ParquetWriter handles writing the dataset to a single Parquet file.
type ParquetWriter struct {
	path        string
	parallelism int64
}

// NewParquetWriter creates a new Parquet writer.
func NewParquetWriter(path string, parallelism int64) *ParquetWriter {
	if parallelism <= 0 {
		parallelism = defaultParquetParallelism
	}
	return &ParquetWriter{path: path, parallelism: parallelism}
}

// Name implements model.Writer.
func (w *ParquetWriter) Name() string {
	return "parquet:" + w.path
}

// Write implements model.Writer. The file is written next to its final path
// and renamed into place once complete.
func (w *ParquetWriter) Write(_ context.Context, dataset model.Dataset) error {
	if err := os.MkdirAll(filepath.Dir(w.path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmpPath := w.path + ".tmp"
	if err := w.writeFile(tmpPath, dataset); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move parquet file into place: %w", err)
	}
	log.Infof("Wrote %d rows to '%s'", len(dataset), w.path)
	return nil
}

func (w *ParquetWriter) writeFile(path string, dataset model.Dataset) error {
	file, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("failed to create parquet file: %w", err)
	}

	pw, err := parquetwriter.NewParquetWriter(file, new(ParquetRow), w.parallelism)
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	for _, s := range dataset {
		if err := pw.Write(toParquetRow(s)); err != nil {
			pw.WriteStop()
			file.Close()
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("failed to stop parquet writer: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close parquet file: %w", err)
	}
	return nil
}

func toParquetRow(s model.Sample) ParquetRow {
	return ParquetRow{
		TestName:      s.Test,
		TCPFlavor:     s.Flavor,
		TimeIter:      int64(s.TimeIndex),
		BitsPerSecond: s.ThroughputBps,
		RTTMs:         s.RTTMs,
		CwndSizeBytes: s.CwndBytes,
	}
}
