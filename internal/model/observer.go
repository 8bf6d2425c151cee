package model

// Severity of an observed pipeline event.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	}
	return "unknown"
}

// Event is a single progress or failure notice emitted by the pipeline.
// Run is the zero RunID for events that do not concern a single run.
type Event struct {
	Severity Severity
	Run      RunID
	Message  string
	// Kind is set for failure events.
	Kind ErrorKind
	Err  error
}

// Observer receives pipeline events. The pipeline never depends on an
// observer for correctness.
type Observer interface {
	Observe(ev Event)
}
