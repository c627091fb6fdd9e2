package tree

// Stats counts work done by one processor run. Each run writes into its own
// value; the pipeline aggregates across runs under its own lock, so
// concurrent invocations never share a counter.
type Stats struct {
	NodesVisited  int `json:"nodesVisited"`
	NodesKept     int `json:"nodesKept"`
	NodesEnhanced int `json:"nodesEnhanced"`
}

// Add accumulates another run's counters into s.
func (s *Stats) Add(other Stats) {
	s.NodesVisited += other.NodesVisited
	s.NodesKept += other.NodesKept
	s.NodesEnhanced += other.NodesEnhanced
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	*s = Stats{}
}
