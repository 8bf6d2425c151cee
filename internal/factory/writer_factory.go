package factory

import (
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/model"
	"fmt"
	"sort"
)

// WriterFactory creates a writer from its config definition.
type WriterFactory func(def config.WriterDef) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Types returns the registered writer types, sorted.
func Types() []string {
	types := make([]string, 0, len(registry))
	for name := range registry {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}

// CreateWriters builds every enabled writer of the config, in config order.
// Writers created before a failure are closed again.
func CreateWriters(cfg *config.Config) ([]model.Writer, error) {
	var writers []model.Writer

	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}

		factory, ok := registry[def.Type]
		if !ok {
			CloseWriters(writers)
			return nil, fmt.Errorf("unknown writer type: '%s'", def.Type)
		}

		w, err := factory(def)
		if err != nil {
			CloseWriters(writers)
			return nil, fmt.Errorf("error creating writer type '%s': %w", def.Type, err)
		}
		writers = append(writers, w)
	}

	return writers, nil
}

// CloseWriters closes the writers that hold connections and returns the
// first error.
func CloseWriters(writers []model.Writer) error {
	var first error
	for _, w := range writers {
		if c, ok := w.(model.Closer); ok {
			if err := c.Close(); err != nil && first == nil {
				first = fmt.Errorf("failed to close writer %s: %w", w.Name(), err)
			}
		}
	}
	return first
}
