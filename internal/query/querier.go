// Package query serves read-only views of an aggregated dataset.
package query

import (
	"Go2FlavorSpectra/internal/aggregator"
	"Go2FlavorSpectra/internal/model"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// RunInfo describes one (test, flavor) pair of the dataset.
type RunInfo struct {
	Test      string              `json:"test_name"`
	Flavor    string              `json:"tcp_flavor"`
	Samples   int                 `json:"samples"`
	Condition model.TestCondition `json:"condition"`
}

// ChartRow is a Sample in the units used for plotting.
type ChartRow struct {
	Test           string  `json:"test_name"`
	Flavor         string  `json:"tcp_flavor"`
	TimeIter       uint64  `json:"time_iter"`
	ThroughputMbps float64 `json:"throughput_mbps"`
	RTTMs          float64 `json:"rtt_ms"`
	CwndKB         float64 `json:"cwnd_size_kb"`
	Location       string  `json:"location"`
	Medium         string  `json:"medium"`
	Load           bool    `json:"load"`
}

// NewChartRow converts a sample to its chart view.
func NewChartRow(s model.Sample) ChartRow {
	cond := model.ConditionOf(s.Test)
	return ChartRow{
		Test:           s.Test,
		Flavor:         s.Flavor,
		TimeIter:       s.TimeIndex,
		ThroughputMbps: s.ThroughputMbps(),
		RTTMs:          s.RTTMs,
		CwndKB:         s.CwndKB(),
		Location:       cond.Location,
		Medium:         cond.Medium(),
		Load:           cond.Load,
	}
}

// Filter selects samples. Empty fields match everything.
type Filter struct {
	Test     string
	Flavor   string
	Location string
	Medium   string
	Load     *bool
}

// ParseFilter reads a Filter from the query parameters test, flavor,
// location, medium (wlan|lan) and load (a boolean).
func ParseFilter(v url.Values) (Filter, error) {
	f := Filter{
		Test:     v.Get("test"),
		Flavor:   v.Get("flavor"),
		Location: v.Get("location"),
		Medium:   strings.ToLower(v.Get("medium")),
	}
	if f.Medium != "" && f.Medium != "wlan" && f.Medium != "lan" {
		return Filter{}, fmt.Errorf("invalid medium '%s', must be wlan or lan", v.Get("medium"))
	}
	if raw := v.Get("load"); raw != "" {
		load, err := strconv.ParseBool(raw)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid load '%s': %w", raw, err)
		}
		f.Load = &load
	}
	return f, nil
}

// Match reports whether s passes the filter.
func (f Filter) Match(s model.Sample) bool {
	if f.Test != "" && s.Test != f.Test {
		return false
	}
	if f.Flavor != "" && s.Flavor != f.Flavor {
		return false
	}
	if f.Location == "" && f.Medium == "" && f.Load == nil {
		return true
	}
	cond := model.ConditionOf(s.Test)
	if f.Location != "" && cond.Location != f.Location {
		return false
	}
	if f.Medium != "" && cond.Medium() != f.Medium {
		return false
	}
	return f.Load == nil || cond.Load == *f.Load
}

// Querier defines the interface for querying aggregated samples.
type Querier interface {
	Runs(ctx context.Context) ([]RunInfo, error)
	Samples(ctx context.Context, f Filter) ([]ChartRow, error)
}

// datasetQuerier answers queries from an in-memory dataset. The dataset is
// never modified, so it is safe for concurrent use.
type datasetQuerier struct {
	dataset model.Dataset
}

// NewDatasetQuerier creates a querier over dataset.
func NewDatasetQuerier(dataset model.Dataset) Querier {
	return &datasetQuerier{dataset: dataset}
}

// LoadCSV creates a querier over a dataset written by the csv writer.
func LoadCSV(path string) (Querier, error) {
	dataset, err := aggregator.ReadCSVFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	return NewDatasetQuerier(dataset), nil
}

func (q *datasetQuerier) Runs(ctx context.Context) ([]RunInfo, error) {
	ids, counts := q.dataset.Runs()
	runs := make([]RunInfo, 0, len(ids))
	for _, id := range ids {
		runs = append(runs, RunInfo{
			Test:      id.Test,
			Flavor:    id.Flavor,
			Samples:   counts[id],
			Condition: model.ConditionOf(id.Test),
		})
	}
	return runs, nil
}

func (q *datasetQuerier) Samples(ctx context.Context, f Filter) ([]ChartRow, error) {
	rows := []ChartRow{}
	for _, s := range q.dataset {
		if f.Match(s) {
			rows = append(rows, NewChartRow(s))
		}
	}
	return rows, nil
}
