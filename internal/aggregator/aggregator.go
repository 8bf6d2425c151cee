// Package aggregator accumulates the samples of every run into one dataset
// and hands it to the output writers exactly once.
package aggregator

import (
	"Go2FlavorSpectra/internal/model"
	"context"
	"errors"
	"fmt"
)

var errNoSamples = errors.New("no samples were aggregated")

// Aggregator is the write-once, in-memory dataset of an aggregation.
// It is used from a single goroutine.
type Aggregator struct {
	samples model.Dataset
	flushed bool
}

// New creates an empty aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Append adds the samples of one run. Samples must arrive in run
// enumeration order and time index order within a run.
func (a *Aggregator) Append(samples ...model.Sample) {
	a.samples = append(a.samples, samples...)
}

// Len returns the number of accumulated samples.
func (a *Aggregator) Len() int {
	return len(a.samples)
}

// Dataset returns the accumulated samples.
func (a *Aggregator) Dataset() model.Dataset {
	return a.samples
}

// Flush hands the dataset to every writer in order. An empty dataset is a
// KindEmptyResult error and no writer is called. A writer failure is a
// KindOutputFailure error and stops the flush; it is fatal for the caller.
// Flush may only succeed once.
func (a *Aggregator) Flush(ctx context.Context, writers ...model.Writer) error {
	if a.flushed {
		return errors.New("dataset already flushed")
	}
	if len(a.samples) == 0 {
		return &model.PipelineError{Kind: model.KindEmptyResult, Err: errNoSamples}
	}

	for _, w := range writers {
		if err := w.Write(ctx, a.samples); err != nil {
			if model.KindOf(err) == model.KindOutputFailure {
				return err
			}
			return &model.PipelineError{Kind: model.KindOutputFailure, Path: w.Name(), Err: err}
		}
	}
	a.flushed = true
	return nil
}

// Summary counts samples per run, in enumeration order.
type Summary struct {
	Runs         []model.RunID
	SamplesByRun map[model.RunID]int
	TotalSamples int
}

// Summarize builds a Summary of a dataset.
func Summarize(dataset model.Dataset) Summary {
	runs, counts := dataset.Runs()
	return Summary{Runs: runs, SamplesByRun: counts, TotalSamples: len(dataset)}
}

func (s Summary) String() string {
	return fmt.Sprintf("%d samples across %d runs", s.TotalSamples, len(s.Runs))
}
