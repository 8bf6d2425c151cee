package model

import "context"

// Writer defines a generic interface for persisting an aggregated dataset.
type Writer interface {
	// Name identifies the writer in logs and reports, e.g. "csv:combined_results.csv".
	Name() string

	// Write persists the whole dataset. It is called once per aggregation with
	// a non-empty dataset. A returned error is an output failure.
	Write(ctx context.Context, dataset Dataset) error
}

// Closer is implemented by writers holding connections.
type Closer interface {
	Close() error
}
