package parser

import (
	"regexp"
	"strconv"
)

// The number may omit either side of the decimal point ("0.5", ".5", "5.").
var pingTimePattern = regexp.MustCompile(`time=(\d+\.?\d*|\.\d+) ms`)

// ParsePing collects the round-trip times of a ping log, in milliseconds and
// file order. Lines without a "time=<n> ms" field are ignored; a log without
// any is an empty sequence, not an error.
func ParsePing(path string) ([]float64, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var rtts []float64
	sc := newScanner(f)
	for sc.Scan() {
		m := pingTimePattern.FindSubmatch(sc.Bytes())
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(string(m[1]), 64)
		if err != nil {
			return nil, malformed(path, "invalid ping time %q: %w", m[1], err)
		}
		rtts = append(rtts, v)
	}
	if err := sc.Err(); err != nil {
		return nil, malformed(path, "failed to read ping log: %w", err)
	}
	return rtts, nil
}
