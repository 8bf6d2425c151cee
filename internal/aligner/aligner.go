// Package aligner zips the parallel sequences of a run into Samples.
//
// Alignment is truncate-to-shortest: with n the length of the shortest
// sequence, exactly n Samples are produced, Sample i taking index i of every
// sequence. Trailing values of longer sequences are discarded. There is no
// interpolation and a length mismatch is not an error.
package aligner

import (
	"Go2FlavorSpectra/internal/model"
	"errors"
)

var errEmptySequence = errors.New("at least one required sequence is empty")

// Truncation counts the trailing values dropped from each sequence.
type Truncation struct {
	Throughput int
	RTT        int
	Cwnd       int
}

// Any reports whether anything was dropped.
func (t Truncation) Any() bool {
	return t.Throughput > 0 || t.RTT > 0 || t.Cwnd > 0
}

// Align merges the sequences of one run. It returns a KindAlignmentFailure
// error and no samples when the shortest sequence is empty.
func Align(id model.RunID, series model.Series) ([]model.Sample, Truncation, error) {
	n := min(len(series.Throughput), len(series.RTT), len(series.Cwnd))
	if n == 0 {
		return nil, Truncation{}, &model.PipelineError{Kind: model.KindAlignmentFailure, Run: id, Err: errEmptySequence}
	}

	samples := make([]model.Sample, n)
	for i := 0; i < n; i++ {
		samples[i] = model.Sample{
			Test:          id.Test,
			Flavor:        id.Flavor,
			TimeIndex:     uint64(i),
			ThroughputBps: series.Throughput[i],
			RTTMs:         series.RTT[i],
			CwndBytes:     series.Cwnd[i],
		}
	}

	return samples, Truncation{
		Throughput: len(series.Throughput) - n,
		RTT:        len(series.RTT) - n,
		Cwnd:       len(series.Cwnd) - n,
	}, nil
}
