package system

import (
	"sync"
	"time"
)

// Point is a single measurement at a point in time.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// SeriesSnapshot is the rolling history of all three vitals tracks.
type SeriesSnapshot struct {
	CPU    []Point `json:"cpu"`
	Memory []Point `json:"memory"`
	Disk   []Point `json:"disk"`
}

// Series keeps vitals measurements in memory for a sliding window.
// Old points are pruned as new ones arrive.
type Series struct {
	mu     sync.RWMutex
	window time.Duration
	cpu    []Point
	memory []Point
	disk   []Point
}

// NewSeries creates a series covering the given window.
func NewSeries(window time.Duration) *Series {
	return &Series{window: window}
}

// Add records one vitals sample.
func (s *Series) Add(v Vitals) {
	s.addAt(time.Now(), v)
}

func (s *Series) addAt(t time.Time, v Vitals) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cpu = append(s.cpu, Point{Time: t, Value: v.CPUPercent})
	s.memory = append(s.memory, Point{Time: t, Value: v.MemPercent})
	s.disk = append(s.disk, Point{Time: t, Value: v.DiskPercent})

	cutoff := t.Add(-s.window)
	s.cpu = prune(s.cpu, cutoff)
	s.memory = prune(s.memory, cutoff)
	s.disk = prune(s.disk, cutoff)
}

// prune drops points at or before the cutoff.
func prune(points []Point, cutoff time.Time) []Point {
	start := 0
	for start < len(points) && !points[start].Time.After(cutoff) {
		start++
	}
	if start == 0 {
		return points
	}
	return points[start:]
}

// Snapshot copies out the points newer than the given duration. A zero
// duration returns the full window.
func (s *Series) Snapshot(d time.Duration) SeriesSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d <= 0 || d > s.window {
		d = s.window
	}
	cutoff := time.Now().Add(-d)

	return SeriesSnapshot{
		CPU:    copyAfter(s.cpu, cutoff),
		Memory: copyAfter(s.memory, cutoff),
		Disk:   copyAfter(s.disk, cutoff),
	}
}

func copyAfter(points []Point, cutoff time.Time) []Point {
	out := make([]Point, 0, len(points))
	for _, p := range points {
		if p.Time.After(cutoff) {
			out = append(out, p)
		}
	}
	return out
}

// Latest returns the most recent sample.
func (s *Series) Latest() (Vitals, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.cpu) == 0 {
		return Vitals{}, time.Time{}, false
	}

	last := len(s.cpu) - 1
	return Vitals{
		CPUPercent:  s.cpu[last].Value,
		MemPercent:  s.memory[last].Value,
		DiskPercent: s.disk[last].Value,
	}, s.cpu[last].Time, true
}

// AverageCPU returns the mean CPU usage over the given duration.
func (s *Series) AverageCPU(d time.Duration) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cutoff := time.Now().Add(-d)
	var sum float64
	var n int
	for _, p := range s.cpu {
		if p.Time.After(cutoff) {
			sum += p.Value
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
