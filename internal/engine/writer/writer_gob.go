package writer

import (
	"Go2FlavorSpectra/internal/aggregator"
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/factory"
	"Go2FlavorSpectra/internal/model"
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

func init() {
	factory.RegisterWriter("gob", func(def config.WriterDef) (model.Writer, error) {
		if def.Gob.RootPath == "" {
			return nil, errors.New("gob writer requires root_path")
		}
		return NewGobWriter(def.Gob.RootPath), nil
	})
}

// snapshotLayout names the per-aggregation snapshot directory.
const snapshotLayout = "2006-01-02_15-04-05"

// RunSummary is the sample count of one run inside SummaryData.
type RunSummary struct {
	Test    string `json:"test_name"`
	Flavor  string `json:"tcp_flavor"`
	Samples int    `json:"samples"`
}

// SummaryData holds the metadata for a dataset snapshot.
type SummaryData struct {
	TotalSamples int          `json:"total_samples"`
	Runs         []RunSummary `json:"runs"`
	Timestamp    string       `json:"timestamp"`
}

// GobWriter writes the dataset in gob format plus a JSON summary into a
// timestamped directory under rootPath.
type GobWriter struct {
	rootPath string
	now      func() time.Time
}

// NewGobWriter creates a new gob snapshot writer.
func NewGobWriter(rootPath string) *GobWriter {
	return &GobWriter{rootPath: rootPath, now: time.Now}
}

// Name implements model.Writer.
func (w *GobWriter) Name() string {
	return "gob:" + w.rootPath
}

// Write implements model.Writer.
func (w *GobWriter) Write(_ context.Context, dataset model.Dataset) error {
	now := w.now()

	// 1. Create timestamped directory
	snapshotDir := filepath.Join(w.rootPath, now.Format(snapshotLayout))
	if err := os.MkdirAll(snapshotDir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	// 2. Write the samples
	dataPath := filepath.Join(snapshotDir, "dataset.gob")
	if err := writeGob(dataPath, dataset); err != nil {
		return err
	}

	// 3. Write summary file
	s := aggregator.Summarize(dataset)
	summary := SummaryData{
		TotalSamples: s.TotalSamples,
		Runs:         make([]RunSummary, 0, len(s.Runs)),
		Timestamp:    now.UTC().Format(time.RFC3339),
	}
	for _, id := range s.Runs {
		summary.Runs = append(summary.Runs, RunSummary{Test: id.Test, Flavor: id.Flavor, Samples: s.SamplesByRun[id]})
	}

	summaryFilePath := filepath.Join(snapshotDir, "summary.json")
	summaryFile, err := os.Create(summaryFilePath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	jsonEncoder := json.NewEncoder(summaryFile)
	jsonEncoder.SetIndent("", "  ")
	if err := jsonEncoder.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}
	return summaryFile.Close()
}

func writeGob(path string, dataset model.Dataset) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", path, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(dataset); err != nil {
		return fmt.Errorf("failed to encode samples to gob for file '%s': %w", path, err)
	}
	return file.Close()
}

// ReadGob decodes a dataset written by GobWriter.
func ReadGob(path string) (model.Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var dataset model.Dataset
	if err := gob.NewDecoder(file).Decode(&dataset); err != nil {
		return nil, fmt.Errorf("failed to decode gob file '%s': %w", path, err)
	}
	return dataset, nil
}
