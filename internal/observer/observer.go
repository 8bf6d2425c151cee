// Package observer provides model.Observer implementations: structured
// logging, Prometheus counters and fan-out.
package observer

import "Go2FlavorSpectra/internal/model"

// Multi forwards every event to each observer in order.
type Multi []model.Observer

// Observe implements model.Observer.
func (m Multi) Observe(ev model.Event) {
	for _, o := range m {
		o.Observe(ev)
	}
}

// Func adapts a function to model.Observer.
type Func func(ev model.Event)

// Observe implements model.Observer.
func (f Func) Observe(ev model.Event) {
	f(ev)
}
