// Package parser turns the per-run log files into numeric sequences.
//
// Every parser reads a single file, closes it on every exit path and reports
// failures as *model.PipelineError values of kind KindMissingInput (the file
// does not exist) or KindMalformedInput (it could not be read or decoded).
// On error the returned sequences are always empty; callers treat the file as
// holding no usable data.
package parser

import (
	"Go2FlavorSpectra/internal/model"
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// maxLineSize bounds a single log line; ping output can carry long banners.
const maxLineSize = 1024 * 1024

// open wraps os.Open with the pipeline error taxonomy.
func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, model.NewError(model.KindMissingInput, path, err)
		}
		return nil, model.NewError(model.KindMalformedInput, path, err)
	}
	return f, nil
}

func newScanner(f *os.File) *bufio.Scanner {
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return sc
}

func malformed(path string, format string, args ...interface{}) error {
	return model.NewError(model.KindMalformedInput, path, fmt.Errorf(format, args...))
}
