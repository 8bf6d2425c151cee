package locator

import (
	"Go2FlavorSpectra/internal/model"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func ids(runs []model.Run) []model.RunID {
	out := make([]model.RunID, len(runs))
	for i, r := range runs {
		out[i] = r.ID
	}
	return out
}

func TestLocate_LexicographicOrder(t *testing.T) {
	root := t.TempDir()
	// Created out of order so the result does not depend on creation order.
	for _, dir := range []string{"zurich_lan/reno", "berlin_wlan/vegas", "berlin_wlan/bbr", "zurich_lan/cubic", "berlin_wlan/cubic"} {
		touch(t, filepath.Join(root, dir, model.IperfFile))
	}
	touch(t, filepath.Join(root, "README.md"))
	touch(t, filepath.Join(root, "berlin_wlan", "notes.txt"))

	runs, err := Locate(root, model.VariantCombined)
	require.NoError(t, err)
	assert.Equal(t, []model.RunID{
		{Test: "berlin_wlan", Flavor: "bbr"},
		{Test: "berlin_wlan", Flavor: "cubic"},
		{Test: "berlin_wlan", Flavor: "vegas"},
		{Test: "zurich_lan", Flavor: "cubic"},
		{Test: "zurich_lan", Flavor: "reno"},
	}, ids(runs))
	for _, r := range runs {
		assert.True(t, r.Complete())
		assert.Equal(t, filepath.Join(root, r.ID.Test, r.ID.Flavor, model.IperfFile), r.Files[model.IperfFile])
	}
}

func TestLocate_DiscreteMissingFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{model.PingFile, model.CwndFile, model.IperfFile} {
		touch(t, filepath.Join(root, "siteA", "cubic", name))
	}
	touch(t, filepath.Join(root, "siteA", "reno", model.PingFile))
	touch(t, filepath.Join(root, "siteA", "reno", model.IperfFile))

	runs, err := Locate(root, model.VariantDiscrete)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.True(t, runs[0].Complete())
	assert.Len(t, runs[0].Files, 3)

	assert.Equal(t, model.RunID{Test: "siteA", Flavor: "reno"}, runs[1].ID)
	assert.False(t, runs[1].Complete())
	assert.Equal(t, []string{model.CwndFile}, runs[1].Missing)
}

func TestLocate_RequiredFileIsDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "t", "f", model.IperfFile), 0o755))

	runs, err := Locate(root, model.VariantCombined)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, []string{model.IperfFile}, runs[0].Missing)
}

func TestLocate_EmptyRoot(t *testing.T) {
	runs, err := Locate(t.TempDir(), model.VariantCombined)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestLocate_MissingRoot(t *testing.T) {
	_, err := Locate(filepath.Join(t.TempDir(), "results"), model.VariantCombined)
	assert.ErrorIs(t, err, model.ErrMissingInput)
}

func TestLocate_RootIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results")
	touch(t, path)

	_, err := Locate(path, model.VariantCombined)
	assert.ErrorIs(t, err, model.ErrMissingInput)
}

func TestLocate_UnreadableTestDirectory(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}
	root := t.TempDir()
	touch(t, filepath.Join(root, "siteA", "cubic", model.IperfFile))
	locked := filepath.Join(root, "siteB")
	require.NoError(t, os.MkdirAll(filepath.Join(locked, "reno"), 0o755))
	require.NoError(t, os.Chmod(locked, 0o000))
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	runs, err := Locate(root, model.VariantCombined)
	require.NoError(t, err)
	require.Equal(t, []model.RunID{{Test: "siteA", Flavor: "cubic"}, {Test: "siteB"}}, ids(runs))

	assert.True(t, runs[0].Complete())
	assert.False(t, runs[1].Complete())
	assert.ErrorIs(t, runs[1].Err, model.ErrMalformedInput)
	assert.ErrorContains(t, runs[1].Err, "failed to list test directory")
}
