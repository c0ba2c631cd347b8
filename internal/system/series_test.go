package system

import (
	"testing"
	"time"
)

func TestSeriesAddAndLatest(t *testing.T) {
	s := NewSeries(time.Hour)

	if _, _, ok := s.Latest(); ok {
		t.Fatal("Empty series should have no latest sample")
	}

	s.Add(Vitals{CPUPercent: 10, MemPercent: 40, DiskPercent: 70})
	s.Add(Vitals{CPUPercent: 20, MemPercent: 45, DiskPercent: 71})

	latest, at, ok := s.Latest()
	if !ok {
		t.Fatal("Expected a latest sample")
	}
	if latest.CPUPercent != 20 || latest.MemPercent != 45 || latest.DiskPercent != 71 {
		t.Errorf("Latest sample wrong: %+v", latest)
	}
	if at.IsZero() {
		t.Error("Latest timestamp should be set")
	}
}

func TestSeriesPrunesOutsideWindow(t *testing.T) {
	s := NewSeries(time.Minute)
	now := time.Now()

	s.addAt(now.Add(-2*time.Minute), Vitals{CPUPercent: 1})
	s.addAt(now.Add(-30*time.Second), Vitals{CPUPercent: 2})
	s.addAt(now, Vitals{CPUPercent: 3})

	snap := s.Snapshot(0)
	if len(snap.CPU) != 2 {
		t.Fatalf("Expected 2 points inside the window, got %d", len(snap.CPU))
	}
	if snap.CPU[0].Value != 2 || snap.CPU[1].Value != 3 {
		t.Errorf("Wrong points survived pruning: %+v", snap.CPU)
	}
}

func TestSeriesSnapshotNarrowerThanWindow(t *testing.T) {
	s := NewSeries(time.Hour)
	now := time.Now()

	s.addAt(now.Add(-30*time.Minute), Vitals{CPUPercent: 5})
	s.addAt(now.Add(-5*time.Minute), Vitals{CPUPercent: 6})
	s.addAt(now, Vitals{CPUPercent: 7})

	snap := s.Snapshot(10 * time.Minute)
	if len(snap.CPU) != 2 {
		t.Fatalf("Expected 2 points in the last 10 minutes, got %d", len(snap.CPU))
	}
	if snap.CPU[0].Value != 6 {
		t.Errorf("Expected oldest surviving point 6, got %v", snap.CPU[0].Value)
	}
}

func TestSeriesAverageCPU(t *testing.T) {
	s := NewSeries(time.Hour)
	now := time.Now()

	s.addAt(now.Add(-3*time.Minute), Vitals{CPUPercent: 10})
	s.addAt(now.Add(-2*time.Minute), Vitals{CPUPercent: 20})
	s.addAt(now.Add(-1*time.Minute), Vitals{CPUPercent: 30})

	avg := s.AverageCPU(5 * time.Minute)
	if avg != 20 {
		t.Errorf("Expected average 20, got %v", avg)
	}

	if got := NewSeries(time.Hour).AverageCPU(time.Minute); got != 0 {
		t.Errorf("Empty series average should be 0, got %v", got)
	}
}
