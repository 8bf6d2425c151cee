// Package locator enumerates the runs stored under a results directory laid
// out as <root>/<test>/<flavor>/<files>.
package locator

import (
	"Go2FlavorSpectra/internal/model"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Locate walks the two directory levels below root in lexicographic order and
// returns one Run per (test, flavor) directory. Non-directory entries are
// ignored at both levels. Runs missing a file required by variant are still
// returned, with Missing populated, so the caller can report them. A test
// directory that cannot be listed becomes a single Run with Err set; only a
// missing or unreadable root is an error.
func Locate(root string, variant model.Variant) ([]model.Run, error) {
	tests, err := subdirs(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.NewError(model.KindMissingInput, root, err)
		}
		return nil, fmt.Errorf("failed to list results root '%s': %w", root, err)
	}

	var runs []model.Run
	for _, test := range tests {
		testDir := filepath.Join(root, test)
		flavors, err := subdirs(testDir)
		if err != nil {
			runs = append(runs, unreadable(test, testDir, err))
			continue
		}
		for _, flavor := range flavors {
			runs = append(runs, newRun(model.RunID{Test: test, Flavor: flavor}, filepath.Join(testDir, flavor), variant))
		}
	}
	return runs, nil
}

func unreadable(test, dir string, err error) model.Run {
	kind := model.KindMalformedInput
	if errors.Is(err, fs.ErrNotExist) {
		kind = model.KindMissingInput
	}
	return model.Run{
		ID:  model.RunID{Test: test},
		Dir: dir,
		Err: &model.PipelineError{
			Kind: kind,
			Run:  model.RunID{Test: test},
			Path: dir,
			Err:  fmt.Errorf("failed to list test directory: %w", err),
		},
	}
}

func newRun(id model.RunID, dir string, variant model.Variant) model.Run {
	run := model.Run{ID: id, Dir: dir, Files: make(map[string]string)}
	for _, name := range variant.RequiredFiles() {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			run.Missing = append(run.Missing, name)
			continue
		}
		run.Files[name] = path
	}
	return run
}

// subdirs returns the names of the immediate subdirectories of dir, sorted.
// Symlinks are followed so that linked result trees are picked up.
func subdirs(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("'%s' is not a directory: %w", dir, fs.ErrNotExist)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !isDir(filepath.Join(dir, entry.Name()), entry) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func isDir(path string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
