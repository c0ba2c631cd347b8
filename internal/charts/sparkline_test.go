package charts

import (
	"strings"
	"testing"
	"time"
)

func TestSparklineSVG(t *testing.T) {
	tests := []struct {
		name      string
		values    []float64
		width     int
		height    int
		wantEmpty bool
		contains  []string
	}{
		{
			name:      "empty values",
			values:    []float64{},
			width:     100,
			height:    40,
			wantEmpty: true,
		},
		{
			name:      "single value",
			values:    []float64{50},
			width:     100,
			height:    40,
			wantEmpty: true,
		},
		{
			name:   "two values",
			values: []float64{20, 80},
			width:  100,
			height: 40,
			contains: []string{
				`<svg width="100" height="40"`,
				`viewBox="0 0 100 40"`,
				`stroke="#007bff"`,
				`stroke-width="2.0"`,
				`<polyline`,
			},
		},
		{
			name:   "multiple values",
			values: []float64{10, 20, 15, 40, 35, 60, 55},
			width:  150,
			height: 50,
			contains: []string{
				`<svg width="150" height="50"`,
				`viewBox="0 0 150 50"`,
			},
		},
		{
			name:   "flat series still renders",
			values: []float64{50, 50, 50, 50},
			width:  100,
			height: 40,
			contains: []string{
				`<svg`,
				`<polyline`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SparklineSVG(tt.values, tt.width, tt.height)

			if tt.wantEmpty && got != "" {
				t.Errorf("SparklineSVG() = %v, want empty", got)
			}
			if !tt.wantEmpty && got == "" {
				t.Error("SparklineSVG() returned empty, want SVG")
			}

			for _, substr := range tt.contains {
				if !strings.Contains(got, substr) {
					t.Errorf("SparklineSVG() missing substring %q in output", substr)
				}
			}
		})
	}
}

func TestSparklineSVGStyled(t *testing.T) {
	got := SparklineSVGStyled([]float64{10, 30, 25, 45, 40}, 100, 40, "#ff0000", 3.5)

	for _, substr := range []string{
		`stroke="#ff0000"`,
		`stroke-width="3.5"`,
		`<svg width="100" height="40"`,
	} {
		if !strings.Contains(got, substr) {
			t.Errorf("SparklineSVGStyled() missing substring %q in output", substr)
		}
	}
}

func TestPercentSparklineSVGUsesFixedScale(t *testing.T) {
	// On a fixed 0-100 scale a flat 50% line must sit at mid-height
	// regardless of the data's own range.
	got := PercentSparklineSVG([]float64{50, 50}, 100, 100)
	if got == "" {
		t.Fatal("Expected SVG output")
	}
	// y = padding + 50 * 0.8 with height 100 -> 10 + 40 = 50
	if !strings.Contains(got, "0.00,50.00") {
		t.Errorf("Expected mid-height points, got %s", got)
	}
}

func TestMinMax(t *testing.T) {
	tests := []struct {
		name    string
		values  []float64
		wantMin float64
		wantMax float64
	}{
		{"normal values", []float64{10, 20, 5, 30, 15}, 5, 30},
		{"all same", []float64{50, 50, 50}, 50, 50},
		{"negative values", []float64{-10, -5, -20, -15}, -20, -5},
		{"mixed", []float64{-10, 0, 10, -5, 15}, -10, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMin, gotMax := minMax(tt.values)
			if gotMin != tt.wantMin || gotMax != tt.wantMax {
				t.Errorf("minMax() = (%v, %v), want (%v, %v)", gotMin, gotMax, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestTimeAwareSparklineBreaksAtGaps(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	points := []TimePoint{
		{Time: start, Value: 10},
		{Time: start.Add(30 * time.Second), Value: 20},
		// Five minute gap; the line must break here.
		{Time: start.Add(5*time.Minute + 30*time.Second), Value: 30},
		{Time: start.Add(6 * time.Minute), Value: 40},
	}

	got := TimeAwareSparklineSVG(points, start, start.Add(10*time.Minute), VitalsSparklineOptions())

	if count := strings.Count(got, "<polyline"); count != 2 {
		t.Errorf("Expected 2 polyline segments around the gap, got %d in %s", count, got)
	}
}

func TestTimeAwareSparklineEmptyAndSingle(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	opts := VitalsSparklineOptions()

	empty := TimeAwareSparklineSVG(nil, start, start.Add(time.Hour), opts)
	if !strings.Contains(empty, "stroke-dasharray") {
		t.Errorf("Empty series should render the dashed placeholder, got %s", empty)
	}

	single := TimeAwareSparklineSVG([]TimePoint{{Time: start.Add(time.Minute), Value: 42}}, start, start.Add(time.Hour), opts)
	if !strings.Contains(single, "<circle") {
		t.Errorf("Single point should render as a dot, got %s", single)
	}
}

func TestDetailChartSVG(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var points []TimePoint
	for i := 0; i < 10; i++ {
		points = append(points, TimePoint{
			Time:  start.Add(time.Duration(i) * 30 * time.Second),
			Value: float64(30 + i),
		})
	}

	got := DetailChartSVG(DetailChartData{
		Points:    points,
		Title:     "CPU Usage",
		Unit:      "%",
		MinValue:  0,
		MaxValue:  100,
		StartTime: start,
		EndTime:   end,
	}, 800, 400)

	for _, substr := range []string{
		`CPU Usage`,
		`<polyline`,
		`<polygon`,
		`clip-path="url(#plotArea)"`,
		`0%`,
	} {
		if !strings.Contains(got, substr) {
			t.Errorf("DetailChartSVG() missing substring %q", substr)
		}
	}

	noData := DetailChartSVG(DetailChartData{StartTime: start, EndTime: end}, 800, 400)
	if !strings.Contains(noData, "No data available") {
		t.Errorf("Empty chart should say no data, got %s", noData)
	}
}
