package parser

import (
	"Go2FlavorSpectra/internal/model"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func iperfJSON(intervals ...string) string {
	return fmt.Sprintf(`{"start": {}, "intervals": [%s], "end": {}}`, strings.Join(intervals, ","))
}

func interval(bps float64, rttUs float64, cwnd int64) string {
	return fmt.Sprintf(`{"streams": [{"socket": 5, "rtt": %g, "snd_cwnd": %d}], "sum": {"bits_per_second": %g}}`, rttUs, cwnd, bps)
}

func TestParseIperf_CompleteIntervals(t *testing.T) {
	path := writeFile(t, "iperf3.json", iperfJSON(
		interval(9.5e6, 12500, 64000),
		interval(1.1e7, 13000, 72400),
		interval(1.2e7, 9000, 80000),
	))

	res, err := ParseIperf(path, AbortOnMalformed)
	require.NoError(t, err)
	assert.Equal(t, []float64{9.5e6, 1.1e7, 1.2e7}, res.Throughput)
	assert.Equal(t, []float64{12.5, 13, 9}, res.RTT)
	assert.Equal(t, []int64{64000, 72400, 80000}, res.Cwnd)
	assert.Empty(t, res.Skipped)
}

func TestParseIperf_IntervalWithoutThroughputIsDropped(t *testing.T) {
	path := writeFile(t, "iperf3.json", iperfJSON(
		interval(1e6, 1000, 10),
		`{"streams": [{"rtt": 2000, "snd_cwnd": 20}], "sum": {}}`,
		`{"streams": [{"rtt": 3000, "snd_cwnd": 30}]}`,
		interval(4e6, 4000, 40),
	))

	res, err := ParseIperf(path, AbortOnMalformed)
	require.NoError(t, err)
	assert.Equal(t, []float64{1e6, 4e6}, res.Throughput)
	assert.Equal(t, []float64{1, 4}, res.RTT)
	assert.Equal(t, []int64{10, 40}, res.Cwnd)
}

func TestParseIperf_EmptyStreams(t *testing.T) {
	content := iperfJSON(
		interval(1e6, 1000, 10),
		`{"streams": [], "sum": {"bits_per_second": 2e6}}`,
		interval(3e6, 3000, 30),
	)

	t.Run("abort", func(t *testing.T) {
		res, err := ParseIperf(writeFile(t, "iperf3.json", content), AbortOnMalformed)
		require.Error(t, err)
		assert.ErrorIs(t, err, model.ErrMalformedInput)
		assert.ErrorIs(t, err, errNoStreams)

		var ie *IntervalError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, 1, ie.Index)
		assert.Empty(t, res.Throughput)
		assert.Empty(t, res.RTT)
		assert.Empty(t, res.Cwnd)
	})

	t.Run("skip", func(t *testing.T) {
		res, err := ParseIperf(writeFile(t, "iperf3.json", content), SkipMalformed)
		require.NoError(t, err)
		assert.Equal(t, []float64{1e6, 3e6}, res.Throughput)
		assert.Equal(t, []float64{1, 3}, res.RTT)
		assert.Equal(t, []int64{10, 30}, res.Cwnd)
		require.Len(t, res.Skipped, 1)
		assert.Equal(t, 1, res.Skipped[0].Index)
	})
}

func TestParseIperf_MissingStreamFields(t *testing.T) {
	path := writeFile(t, "iperf3.json", iperfJSON(
		`{"streams": [{"snd_cwnd": 10}], "sum": {"bits_per_second": 1e6}}`,
		`{"streams": [{"rtt": 1000}], "sum": {"bits_per_second": 1e6}}`,
	))

	_, err := ParseIperf(path, AbortOnMalformed)
	assert.ErrorIs(t, err, errNoRTT)

	res, err := ParseIperf(path, SkipMalformed)
	require.NoError(t, err)
	assert.Empty(t, res.Throughput)
	require.Len(t, res.Skipped, 2)
	assert.ErrorIs(t, res.Skipped[1], errNoCwnd)
}

func TestParseIperf_MalformedJSON(t *testing.T) {
	path := writeFile(t, "iperf3.json", `{"intervals": [ {"sum": `)

	res, err := ParseIperf(path, SkipMalformed)
	assert.ErrorIs(t, err, model.ErrMalformedInput)
	assert.Empty(t, res.Throughput)

	_, err = ParseIperfThroughput(path)
	assert.ErrorIs(t, err, model.ErrMalformedInput)
}

func TestParseIperf_TrailingData(t *testing.T) {
	doc := iperfJSON(`{"streams": [{"rtt": 1000, "snd_cwnd": 10}], "sum": {"bits_per_second": 1e6}}`)
	for name, content := range map[string]string{
		"garbage":      doc + ` }garbage{`,
		"two_reports":  doc + "\n" + doc,
		"stray_closer": doc + "}",
	} {
		t.Run(name, func(t *testing.T) {
			path := writeFile(t, "iperf3.json", content)

			res, err := ParseIperf(path, SkipMalformed)
			assert.ErrorIs(t, err, model.ErrMalformedInput)
			assert.Empty(t, res.Throughput)
			assert.Empty(t, res.RTT)

			throughput, err := ParseIperfThroughput(path)
			assert.ErrorIs(t, err, model.ErrMalformedInput)
			assert.Empty(t, throughput)
		})
	}

	res, err := ParseIperf(writeFile(t, "iperf3.json", doc+"\n\n"), AbortOnMalformed)
	require.NoError(t, err)
	assert.Len(t, res.Throughput, 1)
}

func TestParseIperf_NoIntervals(t *testing.T) {
	res, err := ParseIperf(writeFile(t, "iperf3.json", `{"error": "unable to connect to server"}`), AbortOnMalformed)
	require.NoError(t, err)
	assert.Empty(t, res.Throughput)
}

func TestParseIperfThroughput_IgnoresStreams(t *testing.T) {
	path := writeFile(t, "iperf3.json", iperfJSON(
		`{"streams": [], "sum": {"bits_per_second": 5e6}}`,
		`{"sum": {"bits_per_second": 6e6}}`,
		`{"streams": [{"rtt": 1}], "sum": {}}`,
	))

	throughput, err := ParseIperfThroughput(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{5e6, 6e6}, throughput)
}

func TestParseIntervalPolicy(t *testing.T) {
	p, err := ParseIntervalPolicy("")
	require.NoError(t, err)
	assert.Equal(t, AbortOnMalformed, p)

	p, err = ParseIntervalPolicy("skip")
	require.NoError(t, err)
	assert.Equal(t, SkipMalformed, p)

	_, err = ParseIntervalPolicy("interpolate")
	assert.Error(t, err)
}
