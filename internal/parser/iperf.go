package parser

import (
	"Go2FlavorSpectra/internal/model"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// IntervalPolicy decides what happens to an interval that reports throughput
// but lacks the stream data needed for RTT and cwnd.
type IntervalPolicy int

const (
	// AbortOnMalformed fails the whole file on the first malformed interval.
	AbortOnMalformed IntervalPolicy = iota
	// SkipMalformed drops the malformed interval and keeps parsing.
	SkipMalformed
)

// ParseIntervalPolicy maps the config value ("abort" or "skip") to a policy.
func ParseIntervalPolicy(name string) (IntervalPolicy, error) {
	switch name {
	case "", "abort":
		return AbortOnMalformed, nil
	case "skip":
		return SkipMalformed, nil
	default:
		return AbortOnMalformed, fmt.Errorf("unknown interval policy '%s'", name)
	}
}

// iperfReport mirrors the subset of iperf3 --json output that is consumed.
type iperfReport struct {
	Intervals []iperfInterval `json:"intervals"`
}

type iperfInterval struct {
	Sum     *iperfSum     `json:"sum"`
	Streams []iperfStream `json:"streams"`
}

type iperfSum struct {
	BitsPerSecond *float64 `json:"bits_per_second"`
}

type iperfStream struct {
	// RTT is reported by iperf3 in microseconds.
	RTT     *float64 `json:"rtt"`
	SndCwnd *int64   `json:"snd_cwnd"`
}

var (
	errNoStreams = errors.New("interval has no stream records")
	errNoRTT     = errors.New("stream record has no rtt")
	errNoCwnd    = errors.New("stream record has no snd_cwnd")
)

// IntervalError describes one malformed interval.
type IntervalError struct {
	Index int
	Err   error
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("interval %d: %v", e.Index, e.Err)
}

func (e *IntervalError) Unwrap() error {
	return e.Err
}

// IperfResult is the output of ParseIperf.
type IperfResult struct {
	model.Series
	// Skipped holds the intervals dropped under SkipMalformed.
	Skipped []*IntervalError
}

func decodeIperf(path string) (*iperfReport, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, model.NewError(model.KindMalformedInput, path, fmt.Errorf("failed to read iperf3 json: %w", err))
	}

	// Unmarshal rejects trailing data after the report object.
	var report iperfReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, model.NewError(model.KindMalformedInput, path, fmt.Errorf("failed to decode iperf3 json: %w", err))
	}
	return &report, nil
}

// ParseIperf extracts throughput (bits/s), RTT (ms) and cwnd (bytes) from
// every interval of an iperf3 JSON report in a single pass.
//
// An interval without sum.bits_per_second contributes to none of the three
// sequences, so they always have the same length.
func ParseIperf(path string, policy IntervalPolicy) (IperfResult, error) {
	report, err := decodeIperf(path)
	if err != nil {
		return IperfResult{}, err
	}

	var res IperfResult
	for i, interval := range report.Intervals {
		if interval.Sum == nil || interval.Sum.BitsPerSecond == nil {
			continue
		}
		rtt, cwnd, err := streamValues(interval)
		if err != nil {
			ie := &IntervalError{Index: i, Err: err}
			if policy == AbortOnMalformed {
				return IperfResult{}, model.NewError(model.KindMalformedInput, path, ie)
			}
			res.Skipped = append(res.Skipped, ie)
			continue
		}
		res.Throughput = append(res.Throughput, *interval.Sum.BitsPerSecond)
		res.RTT = append(res.RTT, rtt)
		res.Cwnd = append(res.Cwnd, cwnd)
	}
	return res, nil
}

// streamValues reads RTT in milliseconds and cwnd from the first stream.
func streamValues(interval iperfInterval) (float64, int64, error) {
	if len(interval.Streams) == 0 {
		return 0, 0, errNoStreams
	}
	stream := interval.Streams[0]
	if stream.RTT == nil {
		return 0, 0, errNoRTT
	}
	if stream.SndCwnd == nil {
		return 0, 0, errNoCwnd
	}
	return *stream.RTT / 1000.0, *stream.SndCwnd, nil
}

// ParseIperfThroughput extracts only sum.bits_per_second from every interval
// that has it. Stream records are not consulted.
func ParseIperfThroughput(path string) ([]float64, error) {
	report, err := decodeIperf(path)
	if err != nil {
		return nil, err
	}

	var throughput []float64
	for _, interval := range report.Intervals {
		if interval.Sum == nil || interval.Sum.BitsPerSecond == nil {
			continue
		}
		throughput = append(throughput, *interval.Sum.BitsPerSecond)
	}
	return throughput, nil
}
