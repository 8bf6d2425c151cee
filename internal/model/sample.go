package model

import "fmt"

// RunID identifies one (test, flavor) directory pair.
type RunID struct {
	Test   string
	Flavor string
}

func (id RunID) String() string {
	return fmt.Sprintf("%s/%s", id.Test, id.Flavor)
}

// Sample is one aligned, time-indexed observation of a run.
type Sample struct {
	Test          string
	Flavor        string
	TimeIndex     uint64
	ThroughputBps float64
	RTTMs         float64
	CwndBytes     int64
}

// RunID returns the identity of the run the sample belongs to.
func (s Sample) RunID() RunID {
	return RunID{Test: s.Test, Flavor: s.Flavor}
}

// ThroughputMbps is the throughput in megabits per second, as plotted by chart consumers.
func (s Sample) ThroughputMbps() float64 {
	return s.ThroughputBps / 1_000_000
}

// CwndKB is the congestion window in kilobytes (1 KB = 1000 bytes).
func (s Sample) CwndKB() float64 {
	return float64(s.CwndBytes) / 1_000
}

// Dataset is the ordered collection of samples produced by one aggregation.
type Dataset []Sample

// Runs returns the distinct run identities in first-appearance order together
// with their sample counts.
func (d Dataset) Runs() ([]RunID, map[RunID]int) {
	var order []RunID
	counts := make(map[RunID]int)
	for _, s := range d {
		id := s.RunID()
		if _, ok := counts[id]; !ok {
			order = append(order, id)
		}
		counts[id]++
	}
	return order, counts
}
