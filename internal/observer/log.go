package observer

import (
	"Go2FlavorSpectra/internal/model"

	"github.com/dapr/kit/logger"
)

// LogObserver writes events to a dapr/kit logger, tagging run events with
// the test and flavor fields.
type LogObserver struct {
	log logger.Logger
}

// NewLogObserver creates an observer logging through l.
func NewLogObserver(l logger.Logger) *LogObserver {
	return &LogObserver{log: l}
}

// Observe implements model.Observer.
func (o *LogObserver) Observe(ev model.Event) {
	fields := map[string]any{}
	if ev.Run != (model.RunID{}) {
		fields["test"] = ev.Run.Test
		fields["flavor"] = ev.Run.Flavor
	}
	if ev.Kind != 0 {
		fields["kind"] = ev.Kind.String()
	}
	if ev.Err != nil {
		fields["error"] = ev.Err.Error()
	}

	l := o.log
	if len(fields) > 0 {
		l = l.WithFields(fields)
	}
	switch ev.Severity {
	case model.SeverityDebug:
		l.Debug(ev.Message)
	case model.SeverityInfo:
		l.Info(ev.Message)
	case model.SeverityWarning:
		l.Warn(ev.Message)
	default:
		l.Error(ev.Message)
	}
}

// ParseLevel maps a config level name to a logger level, defaulting to info.
func ParseLevel(name string) logger.LogLevel {
	switch name {
	case "debug":
		return logger.DebugLevel
	case "warn", "warning":
		return logger.WarnLevel
	case "error":
		return logger.ErrorLevel
	case "fatal":
		return logger.FatalLevel
	default:
		return logger.InfoLevel
	}
}
