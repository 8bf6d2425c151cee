package observer

import (
	"Go2FlavorSpectra/internal/model"
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dapr/kit/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMulti(t *testing.T) {
	var got []string
	m := Multi{
		Func(func(ev model.Event) { got = append(got, "a:"+ev.Message) }),
		Func(func(ev model.Event) { got = append(got, "b:"+ev.Message) }),
	}
	m.Observe(model.Event{Message: "hello"})
	assert.Equal(t, []string{"a:hello", "b:hello"}, got)
}

func TestLogObserver_Fields(t *testing.T) {
	var buf bytes.Buffer
	l := logger.NewLogger("flavorspectra.test.observer")
	l.SetOutput(&buf)
	l.EnableJSONOutput(true)

	NewLogObserver(l).Observe(model.Event{
		Severity: model.SeverityWarning,
		Run:      model.RunID{Test: "siteA", Flavor: "reno"},
		Message:  "skipping run",
		Kind:     model.KindMissingInput,
		Err:      errors.New("cwnd.log not found"),
	})

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "skipping run", entry["msg"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "siteA", entry["test"])
	assert.Equal(t, "reno", entry["flavor"])
	assert.Equal(t, "missing_input", entry["kind"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logger.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, logger.InfoLevel, ParseLevel("verbose"))
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsObserver(reg)
	require.NoError(t, err)

	m.Observe(model.Event{Severity: model.SeverityWarning, Kind: model.KindMalformedInput})
	m.Observe(model.Event{Severity: model.SeverityWarning, Kind: model.KindMalformedInput})
	m.Observe(model.Event{Severity: model.SeverityInfo})
	m.RunAggregated(5)
	m.RunAggregated(3)
	m.RunSkipped(model.KindAlignmentFailure)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.events.WithLabelValues("warning", "malformed_input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.events.WithLabelValues("info", "none")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.runs.WithLabelValues("aggregated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("skipped_alignment_failure")))
	assert.Equal(t, 8.0, testutil.ToFloat64(m.samples))

	_, err = NewMetricsObserver(reg)
	assert.Error(t, err)
}
