package aggregator

import (
	"Go2FlavorSpectra/internal/model"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// Header is the fixed column contract of the output CSV.
var Header = []string{
	"test_name",
	"tcp_flavor",
	"time_iter",
	"bits_per_second",
	"rtt_ms",
	"cwnd_size_bytes",
}

// EncodeCSV writes the header followed by one row per sample.
func EncodeCSV(w io.Writer, dataset model.Dataset) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, s := range dataset {
		if err := cw.Write(record(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func record(s model.Sample) []string {
	return []string{
		s.Test,
		s.Flavor,
		strconv.FormatUint(s.TimeIndex, 10),
		strconv.FormatFloat(s.ThroughputBps, 'f', -1, 64),
		strconv.FormatFloat(s.RTTMs, 'f', -1, 64),
		strconv.FormatInt(s.CwndBytes, 10),
	}
}

// WriteCSVFile writes the dataset to path through a temporary file in the
// same directory that is renamed into place, so path either holds the full
// dataset or is left untouched.
func WriteCSVFile(path string, dataset model.Dataset) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return model.NewError(model.KindOutputFailure, path, fmt.Errorf("failed to create output directory: %w", err))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return model.NewError(model.KindOutputFailure, path, fmt.Errorf("failed to create output file: %w", err))
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := EncodeCSV(tmp, dataset); err != nil {
		return model.NewError(model.KindOutputFailure, path, fmt.Errorf("failed to write csv: %w", err))
	}
	if err := tmp.Close(); err != nil {
		return model.NewError(model.KindOutputFailure, path, fmt.Errorf("failed to close output file: %w", err))
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return model.NewError(model.KindOutputFailure, path, fmt.Errorf("failed to set output file mode: %w", err))
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return model.NewError(model.KindOutputFailure, path, fmt.Errorf("failed to move output file into place: %w", err))
	}
	return nil
}

// ReadCSV decodes a dataset written by EncodeCSV. The header must match the
// column contract exactly.
func ReadCSV(r io.Reader) (model.Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	for i, col := range Header {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected column %d: want %q, got %q", i, col, header[i])
		}
	}

	var dataset model.Dataset
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		s, err := parseRecord(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		dataset = append(dataset, s)
	}
	return dataset, nil
}

// ReadCSVFile opens path and decodes it with ReadCSV.
func ReadCSVFile(path string) (model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()
	return ReadCSV(f)
}

func parseRecord(rec []string) (model.Sample, error) {
	idx, err := strconv.ParseUint(rec[2], 10, 64)
	if err != nil {
		return model.Sample{}, fmt.Errorf("invalid time_iter %q: %w", rec[2], err)
	}
	bps, err := strconv.ParseFloat(rec[3], 64)
	if err != nil {
		return model.Sample{}, fmt.Errorf("invalid bits_per_second %q: %w", rec[3], err)
	}
	rtt, err := strconv.ParseFloat(rec[4], 64)
	if err != nil {
		return model.Sample{}, fmt.Errorf("invalid rtt_ms %q: %w", rec[4], err)
	}
	cwnd, err := strconv.ParseInt(rec[5], 10, 64)
	if err != nil {
		return model.Sample{}, fmt.Errorf("invalid cwnd_size_bytes %q: %w", rec[5], err)
	}
	return model.Sample{
		Test:          rec[0],
		Flavor:        rec[1],
		TimeIndex:     idx,
		ThroughputBps: bps,
		RTTMs:         rtt,
		CwndBytes:     cwnd,
	}, nil
}
