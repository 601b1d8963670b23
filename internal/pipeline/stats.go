package pipeline

import (
	"slices"
	"sync"
	"time"
)

// parseRecord is one finished parse.
type parseRecord struct {
	at      time.Time
	family  string
	elapsed time.Duration
	blocks  int
	failed  bool
}

// FamilyStats counts the parses of one document family.
type FamilyStats struct {
	Parsed int     `json:"parsed"`
	Failed int     `json:"failed"`
	P50Ms  float64 `json:"p50_ms"`
}

// StatsSnapshot aggregates the parses still inside the window. Latency and
// block figures cover successful parses only.
type StatsSnapshot struct {
	Count           int                    `json:"count"`
	Failed          int                    `json:"failed"`
	Blocks          int                    `json:"blocks"`
	MinMs           float64                `json:"min_ms"`
	MaxMs           float64                `json:"max_ms"`
	P50Ms           float64                `json:"p50_ms"`
	P95Ms           float64                `json:"p95_ms"`
	BlocksPerSecond float64                `json:"blocks_per_second"`
	Families        map[string]FamilyStats `json:"families,omitempty"`
}

// ParseStats keeps the parses of a rolling window. Records arrive in time
// order, so expiry trims a prefix.
type ParseStats struct {
	mu      sync.Mutex
	records []parseRecord
	window  time.Duration
	now     func() time.Time
}

func NewParseStats(window time.Duration) *ParseStats {
	if window <= 0 {
		window = time.Hour
	}
	return &ParseStats{window: window, now: time.Now}
}

// Record adds a finished parse of blocks input blocks.
func (s *ParseStats) Record(family string, elapsed time.Duration, blocks int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expire(now)
	s.records = append(s.records, parseRecord{
		at:      now,
		family:  family,
		elapsed: max(elapsed, 0),
		blocks:  blocks,
		failed:  err != nil,
	})
}

func (s *ParseStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expire(s.now())

	snap := StatsSnapshot{Families: map[string]FamilyStats{}}
	var all []time.Duration
	byFamily := map[string][]time.Duration{}
	var busy time.Duration
	for _, r := range s.records {
		fs := snap.Families[r.family]
		if r.failed {
			snap.Failed++
			fs.Failed++
		} else {
			snap.Count++
			snap.Blocks += r.blocks
			busy += r.elapsed
			fs.Parsed++
			all = append(all, r.elapsed)
			byFamily[r.family] = append(byFamily[r.family], r.elapsed)
		}
		snap.Families[r.family] = fs
	}
	for name, d := range byFamily {
		slices.Sort(d)
		fs := snap.Families[name]
		fs.P50Ms = ms(nearestRank(d, 50))
		snap.Families[name] = fs
	}
	if len(all) == 0 {
		return snap
	}
	slices.Sort(all)
	snap.MinMs = ms(all[0])
	snap.MaxMs = ms(all[len(all)-1])
	snap.P50Ms = ms(nearestRank(all, 50))
	snap.P95Ms = ms(nearestRank(all, 95))
	if busy > 0 {
		snap.BlocksPerSecond = float64(snap.Blocks) / busy.Seconds()
	}
	return snap
}

func (s *ParseStats) expire(now time.Time) {
	cutoff := now.Add(-s.window)
	i := slices.IndexFunc(s.records, func(r parseRecord) bool { return !r.at.Before(cutoff) })
	if i < 0 {
		i = len(s.records)
	}
	s.records = slices.Delete(s.records, 0, i)
}

// nearestRank returns the smallest value at or above pct percent of sorted.
func nearestRank(sorted []time.Duration, pct int) time.Duration {
	rank := (pct*len(sorted) + 99) / 100
	return sorted[max(rank, 1)-1]
}

func ms(d time.Duration) float64 { return float64(d) / float64(time.Millisecond) }
