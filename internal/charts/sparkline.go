// Package charts renders small server-side SVG charts. The dashboard
// embeds the returned markup in JSON responses so summary cards can
// show trends without a client-side charting library.
package charts

import (
	"fmt"
	"math"
	"strings"
)

const defaultStroke = "#007bff"

// SparklineSVG renders values as an auto-scaled sparkline. Fewer than
// two points yield an empty string.
func SparklineSVG(values []float64, width, height int) string {
	return SparklineSVGStyled(values, width, height, defaultStroke, 2)
}

// SparklineSVGStyled renders a sparkline with explicit stroke styling.
func SparklineSVGStyled(values []float64, width, height int, stroke string, strokeWidth float64) string {
	if len(values) < 2 {
		return ""
	}

	minVal, maxVal := minMax(values)
	if minVal == maxVal {
		// Flat series; widen the range so the line sits mid-chart.
		maxVal = minVal + 1
	}

	points := polylinePoints(values, width, height, minVal, maxVal)

	return fmt.Sprintf(
		`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" preserveAspectRatio="none"><polyline fill="none" stroke="%s" stroke-width="%.1f" points="%s"/></svg>`,
		width, height, width, height, stroke, strokeWidth, points,
	)
}

// PercentSparklineSVG renders a sparkline on a fixed 0 to 100 scale,
// for CPU and memory style series.
func PercentSparklineSVG(values []float64, width, height int) string {
	if len(values) < 2 {
		return ""
	}

	points := polylinePoints(values, width, height, 0, 100)

	return fmt.Sprintf(
		`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg" preserveAspectRatio="none"><polyline fill="none" stroke="%s" stroke-width="2" points="%s"/></svg>`,
		width, height, width, height, defaultStroke, points,
	)
}

func minMax(values []float64) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)

	for _, v := range values {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	return minVal, maxVal
}

// polylinePoints spaces values evenly on the X axis and scales them to
// the chart height, with a little vertical padding so the line never
// touches the edges.
func polylinePoints(values []float64, width, height int, minVal, maxVal float64) string {
	var points strings.Builder

	for i, v := range values {
		x := (float64(i) / float64(len(values)-1)) * float64(width)

		normalized := (v - minVal) / (maxVal - minVal)
		y := float64(height) - (normalized * float64(height))

		padding := float64(height) * 0.1
		y = padding + (y * 0.8)

		if i > 0 {
			points.WriteString(" ")
		}
		points.WriteString(fmt.Sprintf("%.2f,%.2f", x, y))
	}

	return points.String()
}
