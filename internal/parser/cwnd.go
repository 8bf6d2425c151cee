package parser

import (
	"strconv"
	"strings"
)

// ParseCwnd reads a two-column congestion-window log. The first line is a
// header and is skipped whatever it contains. Each following line must hold
// exactly two comma-separated fields, the second an integer byte count.
//
// A single bad line fails the whole file; no partial sequence is returned.
func ParseCwnd(path string) ([]int64, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cwnds []int64
	sc := newScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		fields := strings.Split(sc.Text(), ",")
		if len(fields) != 2 {
			return nil, malformed(path, "line %d: expected 2 fields, got %d", lineNo, len(fields))
		}
		v, err := strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
		if err != nil {
			return nil, malformed(path, "line %d: invalid cwnd %q: %w", lineNo, fields[1], err)
		}
		cwnds = append(cwnds, v)
	}
	if err := sc.Err(); err != nil {
		return nil, malformed(path, "failed to read cwnd log: %w", err)
	}
	return cwnds, nil
}
