// Package writer holds the output sinks of an aggregation. Every sink except
// the canonical CSV registers itself with the factory by type name.
package writer

import (
	"Go2FlavorSpectra/internal/aggregator"
	"Go2FlavorSpectra/internal/model"
	"context"

	"github.com/dapr/kit/logger"
)

var log = logger.NewLogger("flavorspectra.writer")

// CSVWriter writes the canonical CSV dataset consumed by chart rendering.
type CSVWriter struct {
	path string
}

// NewCSVWriter creates a writer for the given output path.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

// Name implements model.Writer.
func (w *CSVWriter) Name() string {
	return "csv:" + w.path
}

// Path returns the output path.
func (w *CSVWriter) Path() string {
	return w.path
}

// Write implements model.Writer.
func (w *CSVWriter) Write(_ context.Context, dataset model.Dataset) error {
	if err := aggregator.WriteCSVFile(w.path, dataset); err != nil {
		return err
	}
	log.Infof("Wrote %d rows to '%s'", len(dataset), w.path)
	return nil
}
