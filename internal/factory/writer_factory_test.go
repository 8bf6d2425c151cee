package factory

import (
	"Go2FlavorSpectra/internal/config"
	"Go2FlavorSpectra/internal/model"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubWriter struct {
	name   string
	closed bool
}

func (w *stubWriter) Name() string { return w.name }

func (w *stubWriter) Write(context.Context, model.Dataset) error { return nil }

func (w *stubWriter) Close() error {
	w.closed = true
	return nil
}

func TestCreateWriters(t *testing.T) {
	var created []*stubWriter
	RegisterWriter("stub-ok", func(def config.WriterDef) (model.Writer, error) {
		w := &stubWriter{name: "stub:" + def.Gob.RootPath}
		created = append(created, w)
		return w, nil
	})
	RegisterWriter("stub-fail", func(config.WriterDef) (model.Writer, error) {
		return nil, errors.New("no route to host")
	})
	assert.Contains(t, Types(), "stub-ok")
	assert.Panics(t, func() { RegisterWriter("stub-ok", nil) })

	cfg := &config.Config{Writers: []config.WriterDef{
		{Type: "stub-ok", Enabled: true, Gob: config.GobConfig{RootPath: "a"}},
		{Type: "stub-ok", Enabled: false, Gob: config.GobConfig{RootPath: "b"}},
		{Type: "stub-ok", Enabled: true, Gob: config.GobConfig{RootPath: "c"}},
	}}
	writers, err := CreateWriters(cfg)
	require.NoError(t, err)
	require.Len(t, writers, 2)
	assert.Equal(t, "stub:a", writers[0].Name())
	assert.Equal(t, "stub:c", writers[1].Name())

	created = nil
	cfg.Writers = append(cfg.Writers, config.WriterDef{Type: "stub-fail", Enabled: true})
	_, err = CreateWriters(cfg)
	assert.ErrorContains(t, err, "no route to host")
	require.Len(t, created, 2)
	assert.True(t, created[0].closed)
	assert.True(t, created[1].closed)

	_, err = CreateWriters(&config.Config{Writers: []config.WriterDef{{Type: "carrier-pigeon", Enabled: true}}})
	assert.ErrorContains(t, err, "unknown writer type")
}
