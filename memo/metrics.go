package memo

// NoopMetrics is a drop-in Metrics implementation that does nothing.
// It is the default when no observability backend is configured.
type NoopMetrics struct{}

func (NoopMetrics) Hit(string)    {}
func (NoopMetrics) Miss(string)   {}
func (NoopMetrics) Insert(string) {}
func (NoopMetrics) Slot(string)   {}

var _ Metrics = NoopMetrics{}

// Stats is a point-in-time snapshot of one site's counters.
type Stats struct {
	Hits    int64
	Misses  int64
	Inserts int64
	Slots   int
}

// HitRatio returns Hits / (Hits + Misses), or 0 before the first lookup.
func (s Stats) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
