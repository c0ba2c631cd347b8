package charts

import (
	"fmt"
	"strings"
	"time"
)

// TimePoint is a measurement with its timestamp, for charts that place
// points by time instead of evenly.
type TimePoint struct {
	Time  time.Time
	Value float64
}

// TimeSeriesOptions configures time-aware rendering.
type TimeSeriesOptions struct {
	Width       int
	Height      int
	Stroke      string
	StrokeWidth float64

	// GapThreshold breaks the line where samples are further apart
	// than this, so downtime shows as a gap instead of a false slope.
	GapThreshold time.Duration

	MinValue      float64
	MaxValue      float64
	UseFixedScale bool
}

// VitalsSparklineOptions are the defaults for the vitals history
// sparklines. The gap threshold is twice the sampling interval.
func VitalsSparklineOptions() TimeSeriesOptions {
	return TimeSeriesOptions{
		Width:         150,
		Height:        40,
		Stroke:        defaultStroke,
		StrokeWidth:   2,
		GapThreshold:  time.Minute,
		MinValue:      0,
		MaxValue:      100,
		UseFixedScale: true,
	}
}

// TimeAwareSparklineSVG renders points positioned by timestamp across
// the given range, with line breaks at sampling gaps.
func TimeAwareSparklineSVG(points []TimePoint, startTime, endTime time.Time, opts TimeSeriesOptions) string {
	if len(points) == 0 {
		return noDataSVG(opts.Width, opts.Height)
	}
	if len(points) == 1 {
		return singlePointSVG(points[0], startTime, endTime, opts)
	}

	timeRange := endTime.Sub(startTime)
	if timeRange <= 0 {
		timeRange = 24 * time.Hour
	}

	minVal, maxVal := opts.MinValue, opts.MaxValue
	if !opts.UseFixedScale {
		minVal, maxVal = timePointMinMax(points)
		valueRange := maxVal - minVal
		if valueRange == 0 {
			valueRange = 1
		}
		minVal -= valueRange * 0.1
		maxVal += valueRange * 0.1
	}

	var svg strings.Builder
	svg.Grow(512)
	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" preserveAspectRatio="none">`,
		opts.Width, opts.Height, opts.Width, opts.Height))

	for _, segment := range splitAtGaps(points, opts.GapThreshold) {
		if len(segment) < 2 {
			p := segment[0]
			x := xPosition(p.Time, startTime, timeRange, opts.Width)
			y := yPosition(p.Value, minVal, maxVal, opts.Height)
			svg.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="2" fill="%s"/>`, x, y, opts.Stroke))
			continue
		}

		var polyline strings.Builder
		polyline.Grow(len(segment) * 16)
		for i, p := range segment {
			if i > 0 {
				polyline.WriteString(" ")
			}
			x := xPosition(p.Time, startTime, timeRange, opts.Width)
			y := yPosition(p.Value, minVal, maxVal, opts.Height)
			polyline.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		}
		svg.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="%.1f" points="%s"/>`,
			opts.Stroke, opts.StrokeWidth, polyline.String()))
	}

	svg.WriteString(`</svg>`)
	return svg.String()
}

// splitAtGaps groups points into runs of continuous sampling.
func splitAtGaps(points []TimePoint, gapThreshold time.Duration) [][]TimePoint {
	if len(points) == 0 {
		return nil
	}

	var segments [][]TimePoint
	current := []TimePoint{points[0]}

	for i := 1; i < len(points); i++ {
		if points[i].Time.Sub(points[i-1].Time) > gapThreshold {
			segments = append(segments, current)
			current = []TimePoint{points[i]}
		} else {
			current = append(current, points[i])
		}
	}

	return append(segments, current)
}

func xPosition(t, startTime time.Time, timeRange time.Duration, width int) float64 {
	elapsed := t.Sub(startTime)
	if elapsed < 0 {
		return 0
	}
	ratio := float64(elapsed) / float64(timeRange)
	if ratio > 1 {
		ratio = 1
	}
	return ratio * float64(width)
}

func yPosition(value, minVal, maxVal float64, height int) float64 {
	if maxVal == minVal {
		return float64(height) / 2
	}
	normalized := (value - minVal) / (maxVal - minVal)
	if normalized < 0 {
		normalized = 0
	} else if normalized > 1 {
		normalized = 1
	}
	return float64(height) * (1 - normalized)
}

func timePointMinMax(points []TimePoint) (float64, float64) {
	minVal := points[0].Value
	maxVal := points[0].Value
	for _, p := range points[1:] {
		if p.Value < minVal {
			minVal = p.Value
		}
		if p.Value > maxVal {
			maxVal = p.Value
		}
	}
	return minVal, maxVal
}

// noDataSVG draws a flat dashed placeholder line.
func noDataSVG(width, height int) string {
	return fmt.Sprintf(
		`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg"><line x1="0" y1="%d" x2="%d" y2="%d" stroke="#dee2e6" stroke-width="1" stroke-dasharray="4,4"/></svg>`,
		width, height, width, height, height/2, width, height/2)
}

func singlePointSVG(p TimePoint, startTime, endTime time.Time, opts TimeSeriesOptions) string {
	timeRange := endTime.Sub(startTime)
	if timeRange <= 0 {
		timeRange = 24 * time.Hour
	}

	x := xPosition(p.Time, startTime, timeRange, opts.Width)

	minVal, maxVal := opts.MinValue, opts.MaxValue
	if !opts.UseFixedScale {
		minVal = p.Value - 10
		maxVal = p.Value + 10
		if minVal < 0 {
			minVal = 0
		}
	}
	y := yPosition(p.Value, minVal, maxVal, opts.Height)

	return fmt.Sprintf(
		`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg"><circle cx="%.1f" cy="%.1f" r="3" fill="%s"/></svg>`,
		opts.Width, opts.Height, opts.Width, opts.Height, x, y, opts.Stroke)
}
