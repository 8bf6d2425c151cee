package manager

import (
	"Go2FlavorSpectra/internal/aggregator"
	"Go2FlavorSpectra/internal/aligner"
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/engine/writer"
	"Go2FlavorSpectra/internal/factory"
	"Go2FlavorSpectra/internal/locator"
	"Go2FlavorSpectra/internal/model"
	"Go2FlavorSpectra/internal/observer"
	"Go2FlavorSpectra/internal/parser"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Manager runs the aggregation pipeline: locate runs, parse their files,
// align the sequences, accumulate the samples and write the dataset once.
// Runs are processed strictly one after another.
type Manager struct {
	root     string
	variant  model.Variant
	policy   parser.IntervalPolicy
	writers  []model.Writer
	observer model.Observer
	metrics  *observer.MetricsObserver
}

// Option configures a Manager.
type Option func(*Manager)

// WithObserver sets the observer receiving pipeline events.
func WithObserver(o model.Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// WithMetrics records run outcomes in the given metrics observer. It does
// not register it as an event observer.
func WithMetrics(mo *observer.MetricsObserver) Option {
	return func(m *Manager) { m.metrics = mo }
}

// WithWriters appends writers after the configured ones.
func WithWriters(ws ...model.Writer) Option {
	return func(m *Manager) { m.writers = append(m.writers, ws...) }
}

// NewManager creates a Manager. The canonical CSV writer for
// cfg.Pipeline.OutputPath always comes first, followed by the enabled
// writers of cfg.Writers.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	variant, err := model.ParseVariant(cfg.Pipeline.Variant)
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline variant: %w", err)
	}
	policy, err := parser.ParseIntervalPolicy(cfg.Pipeline.IntervalPolicy)
	if err != nil {
		return nil, fmt.Errorf("invalid pipeline interval policy: %w", err)
	}
	if cfg.Pipeline.OutputPath == "" {
		return nil, errors.New("pipeline output path must not be empty")
	}

	extra, err := factory.CreateWriters(cfg)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		root:     cfg.Pipeline.InputRoot,
		variant:  variant,
		policy:   policy,
		writers:  append([]model.Writer{writer.NewCSVWriter(cfg.Pipeline.OutputPath)}, extra...),
		observer: observer.Func(func(model.Event) {}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Close releases the connections held by the writers.
func (m *Manager) Close() error {
	return factory.CloseWriters(m.writers)
}

// Run executes the pipeline. The returned error is non-nil only when the
// input root is missing, ctx is cancelled, or a writer fails; skipped runs
// and an empty dataset are recorded in the report instead.
func (m *Manager) Run(ctx context.Context) (*Report, error) {
	report := &Report{Root: m.root, Variant: m.variant, Started: time.Now()}
	defer func() { report.Duration = time.Since(report.Started) }()

	runs, err := locator.Locate(m.root, m.variant)
	if err != nil {
		m.emit(model.SeverityError, model.RunID{}, fmt.Sprintf("Root directory '%s' not usable", m.root), err)
		return report, err
	}
	m.observer.Observe(model.Event{
		Severity: model.SeverityInfo,
		Message:  fmt.Sprintf("Starting data aggregation of '%s' (%d runs, %s variant)", m.root, len(runs), m.variant),
	})

	agg := aggregator.New()
	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.RunsSeen++

		samples, err := m.processRun(run)
		if err != nil {
			kind := model.KindOf(err)
			report.Skipped = append(report.Skipped, SkippedRun{Run: run.ID, Kind: kind, Reason: err.Error()})
			m.emit(model.SeverityWarning, run.ID, "Skipping run", err)
			if m.metrics != nil {
				m.metrics.RunSkipped(kind)
			}
			continue
		}

		agg.Append(samples...)
		report.RunsAggregated++
		report.Samples += len(samples)
		if m.metrics != nil {
			m.metrics.RunAggregated(len(samples))
		}
		m.observer.Observe(model.Event{
			Severity: model.SeverityInfo,
			Run:      run.ID,
			Message:  fmt.Sprintf("Aggregated %d samples", len(samples)),
		})
	}

	err = agg.Flush(ctx, m.writers...)
	switch {
	case err == nil:
		for _, w := range m.writers {
			report.Outputs = append(report.Outputs, w.Name())
		}
		m.observer.Observe(model.Event{
			Severity: model.SeverityInfo,
			Message:  fmt.Sprintf("Aggregation complete: %s", report),
		})
		return report, nil
	case errors.Is(err, model.ErrEmptyResult):
		report.Empty = true
		m.emit(model.SeverityWarning, model.RunID{}, "No results were processed. No output will be created.", err)
		return report, nil
	default:
		m.emit(model.SeverityError, model.RunID{}, "Failed to write dataset", err)
		return report, err
	}
}

// processRun parses and aligns one run. Any returned error is a
// *model.PipelineError and means the run contributes nothing.
func (m *Manager) processRun(run model.Run) ([]model.Sample, error) {
	m.observer.Observe(model.Event{Severity: model.SeverityDebug, Run: run.ID, Message: "Processing run"})

	if run.Err != nil {
		return nil, run.Err
	}
	if !run.Complete() {
		return nil, &model.PipelineError{
			Kind: model.KindMissingInput,
			Run:  run.ID,
			Path: run.Dir,
			Err:  fmt.Errorf("missing %s", strings.Join(run.Missing, ", ")),
		}
	}

	series, err := m.parseRun(run)
	if err != nil {
		return nil, err
	}

	samples, trunc, err := aligner.Align(run.ID, series)
	if err != nil {
		return nil, err
	}
	if trunc.Any() {
		m.observer.Observe(model.Event{
			Severity: model.SeverityDebug,
			Run:      run.ID,
			Message: fmt.Sprintf("Truncated to %d samples (dropped throughput=%d rtt=%d cwnd=%d)",
				len(samples), trunc.Throughput, trunc.RTT, trunc.Cwnd),
		})
	}
	return samples, nil
}

func (m *Manager) parseRun(run model.Run) (model.Series, error) {
	if m.variant == model.VariantCombined {
		res, err := parser.ParseIperf(run.Files[model.IperfFile], m.policy)
		if err != nil {
			return model.Series{}, withRun(err, run.ID)
		}
		for _, skipped := range res.Skipped {
			m.emit(model.SeverityWarning, run.ID, "Skipping malformed interval",
				model.NewError(model.KindMalformedInput, run.Files[model.IperfFile], skipped))
		}
		return res.Series, nil
	}

	// Every file is parsed so that each unusable one is reported.
	var series model.Series
	var errs []error
	var err error
	if series.RTT, err = parser.ParsePing(run.Files[model.PingFile]); err != nil {
		errs = append(errs, err)
	}
	if series.Cwnd, err = parser.ParseCwnd(run.Files[model.CwndFile]); err != nil {
		errs = append(errs, err)
	}
	if series.Throughput, err = parser.ParseIperfThroughput(run.Files[model.IperfFile]); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return series, nil
	}
	for _, e := range errs[1:] {
		m.emit(model.SeverityWarning, run.ID, "Unusable input file", e)
	}
	return model.Series{}, withRun(errs[0], run.ID)
}

func (m *Manager) emit(sev model.Severity, run model.RunID, msg string, err error) {
	m.observer.Observe(model.Event{Severity: sev, Run: run, Message: msg, Kind: model.KindOf(err), Err: err})
}

func withRun(err error, id model.RunID) error {
	var pe *model.PipelineError
	if errors.As(err, &pe) {
		pe.Run = id
	}
	return err
}
