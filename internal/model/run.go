package model

import (
	"fmt"
	"strings"
)

// File names expected inside a flavor directory.
const (
	IperfFile = "iperf3.json"
	PingFile  = "ping.log"
	CwndFile  = "cwnd.log"
)

// Variant selects which set of log files a run is built from.
type Variant string

const (
	// VariantCombined reads throughput, RTT and cwnd from iperf3.json alone.
	VariantCombined Variant = "combined"
	// VariantDiscrete reads RTT from ping.log, cwnd from cwnd.log and
	// throughput from iperf3.json.
	VariantDiscrete Variant = "discrete"
)

// ParseVariant validates a variant name. An empty name selects VariantCombined.
func ParseVariant(name string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(name))) {
	case "", VariantCombined:
		return VariantCombined, nil
	case VariantDiscrete:
		return VariantDiscrete, nil
	default:
		return "", fmt.Errorf("unknown variant '%s'", name)
	}
}

// RequiredFiles lists the file names a run of this variant must contain.
func (v Variant) RequiredFiles() []string {
	if v == VariantDiscrete {
		return []string{PingFile, CwndFile, IperfFile}
	}
	return []string{IperfFile}
}

// Run is the set of log files located for one (test, flavor) pair.
type Run struct {
	ID  RunID
	Dir string
	// Files maps a required file name to its path. Only files that exist are present.
	Files map[string]string
	// Missing lists required files that were not found.
	Missing []string
	// Err is set when the directory could not be listed. Such a run has an
	// empty Flavor and stands for every flavor of its test.
	Err error
}

// Complete reports whether every required file was found.
func (r Run) Complete() bool {
	return r.Err == nil && len(r.Missing) == 0
}

// Series holds the parallel sequences extracted for one run. A sequence that
// a variant does not read from a given file is filled by another parser.
type Series struct {
	Throughput []float64
	RTT        []float64
	Cwnd       []int64
}
