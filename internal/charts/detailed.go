package charts

import (
	"fmt"
	"strings"
	"time"
)

const detailStroke = "#198754"

// DetailChartData holds everything needed to render a full vitals
// history chart with axes.
type DetailChartData struct {
	Points []TimePoint
	Title  string
	Unit   string

	// Zero MinValue and MaxValue mean auto-scale from the data.
	MinValue float64
	MaxValue float64

	StartTime time.Time
	EndTime   time.Time
}

// DetailChartSVG renders a chart with grid lines, axis labels and the
// data line, sized for the vitals detail view.
func DetailChartSVG(data DetailChartData, width, height int) string {
	if len(data.Points) == 0 {
		return fmt.Sprintf(
			`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg"><text x="%d" y="%d" text-anchor="middle" fill="#6c757d">No data available</text></svg>`,
			width, height, width, height, width/2, height/2)
	}

	marginTop := 40
	marginRight := 60
	marginBottom := 60
	marginLeft := 70

	chartWidth := width - marginLeft - marginRight
	chartHeight := height - marginTop - marginBottom

	if data.MinValue == 0 && data.MaxValue == 0 {
		data.MinValue, data.MaxValue = timePointMinMax(data.Points)
	}

	valueRange := data.MaxValue - data.MinValue
	if valueRange == 0 {
		valueRange = 1
	}
	data.MinValue -= valueRange * 0.1
	data.MaxValue += valueRange * 0.1

	// Percent charts stay within their natural bounds.
	if data.Unit == "%" {
		if data.MinValue < 0 {
			data.MinValue = 0
		}
		if data.MaxValue > 100 {
			data.MaxValue = 100
		}
	}

	var svg strings.Builder
	svg.Grow(2048)

	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" viewBox="0 0 %d %d" xmlns="http://www.w3.org/2000/svg">`, width, height, width, height))
	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#ffffff"/>`, width, height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="25" text-anchor="middle" font-size="16" font-weight="bold" fill="#2d3748">%s</text>`, width/2, data.Title))

	writeGridLines(&svg, marginLeft, marginTop, chartWidth, chartHeight)
	writeYAxis(&svg, marginLeft, marginTop, chartHeight, data.MinValue, data.MaxValue, data.Unit)
	writeXAxis(&svg, marginLeft, marginTop, chartWidth, chartHeight, data.StartTime, data.EndTime)

	svg.WriteString(fmt.Sprintf(`<defs><clipPath id="plotArea"><rect x="%d" y="%d" width="%d" height="%d"/></clipPath></defs>`,
		marginLeft, marginTop, chartWidth, chartHeight))

	svg.WriteString(`<g clip-path="url(#plotArea)">`)
	writeDataLine(&svg, data, marginLeft, marginTop, chartWidth, chartHeight)
	svg.WriteString(`</g>`)

	svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="%d" height="%d" fill="none" stroke="#dee2e6" stroke-width="1"/>`,
		marginLeft, marginTop, chartWidth, chartHeight))
	svg.WriteString(`</svg>`)

	return svg.String()
}

func writeGridLines(svg *strings.Builder, left, top, width, height int) {
	svg.WriteString(`<g stroke="#f0f0f0" stroke-width="1">`)
	for i := 0; i <= 5; i++ {
		y := top + (height * i / 5)
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, left, y, left+width, y))
	}
	for i := 0; i <= 6; i++ {
		x := left + (width * i / 6)
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d"/>`, x, top, x, top+height))
	}
	svg.WriteString(`</g>`)
}

func writeYAxis(svg *strings.Builder, left, top, height int, minVal, maxVal float64, unit string) {
	svg.WriteString(`<g font-size="12" fill="#6c757d">`)
	for i := 0; i <= 5; i++ {
		y := top + height - (height * i / 5)
		value := minVal + (maxVal-minVal)*float64(i)/5

		label := fmt.Sprintf("%.1f%s", value, unit)
		if unit == "%" {
			label = fmt.Sprintf("%.0f%s", value, unit)
		}

		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" text-anchor="end" dominant-baseline="middle">%s</text>`, left-10, y, label))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#dee2e6"/>`, left-5, y, left, y))
	}
	svg.WriteString(`</g>`)
}

func writeXAxis(svg *strings.Builder, left, top, width, height int, startTime, endTime time.Time) {
	svg.WriteString(`<g font-size="11" fill="#6c757d">`)

	timeRange := endTime.Sub(startTime)
	if timeRange <= 0 {
		timeRange = 24 * time.Hour
	}

	labelCount := 7
	if timeRange < time.Hour {
		labelCount = 5
	}

	for i := 0; i < labelCount; i++ {
		labelTime := startTime.Add(timeRange * time.Duration(i) / time.Duration(labelCount-1))

		elapsed := labelTime.Sub(startTime)
		x := left + int(float64(elapsed)/float64(timeRange)*float64(width))
		y := top + height + 20

		var label string
		switch {
		case timeRange <= 2*time.Hour:
			label = labelTime.Format("15:04")
		case timeRange <= 24*time.Hour:
			if i == 0 || i == labelCount-1 {
				label = labelTime.Format("Jan 2 15:04")
			} else {
				label = labelTime.Format("15:04")
			}
		default:
			label = labelTime.Format("Jan 2 15:04")
		}

		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" text-anchor="middle">%s</text>`, x, y, label))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="#dee2e6"/>`, x, top+height, x, top+height+5))
	}
	svg.WriteString(`</g>`)
}

func writeDataLine(svg *strings.Builder, data DetailChartData, left, top, width, height int) {
	timeRange := data.EndTime.Sub(data.StartTime)
	if timeRange <= 0 {
		timeRange = 24 * time.Hour
	}

	plotX := func(t time.Time) int {
		elapsed := t.Sub(data.StartTime)
		return left + int(float64(elapsed)/float64(timeRange)*float64(width))
	}
	plotY := func(v float64) int {
		return top + int(yPosition(v, data.MinValue, data.MaxValue, height))
	}

	if len(data.Points) == 1 {
		p := data.Points[0]
		svg.WriteString(fmt.Sprintf(`<circle cx="%d" cy="%d" r="4" fill="%s"/>`, left+width/2, plotY(p.Value), detailStroke))
		return
	}

	for _, segment := range splitAtGaps(data.Points, time.Minute) {
		if len(segment) < 2 {
			p := segment[0]
			svg.WriteString(fmt.Sprintf(`<circle cx="%d" cy="%d" r="3" fill="%s"/>`, plotX(p.Time), plotY(p.Value), detailStroke))
			continue
		}

		var line strings.Builder
		firstX, lastX := 0, 0
		for i, p := range segment {
			x := plotX(p.Time)
			if i == 0 {
				firstX = x
			} else {
				line.WriteString(" ")
			}
			lastX = x
			line.WriteString(fmt.Sprintf("%d,%d", x, plotY(p.Value)))
		}

		// Shade under the line, then draw it.
		area := line.String()
		area += fmt.Sprintf(" %d,%d %d,%d", lastX, top+height, firstX, top+height)
		svg.WriteString(fmt.Sprintf(`<polygon points="%s" fill="%s" fill-opacity="0.1"/>`, area, detailStroke))
		svg.WriteString(fmt.Sprintf(`<polyline points="%s" fill="none" stroke="%s" stroke-width="2"/>`, line.String(), detailStroke))

		if len(segment) < 20 {
			for _, p := range segment {
				svg.WriteString(fmt.Sprintf(`<circle cx="%d" cy="%d" r="3" fill="%s"/>`, plotX(p.Time), plotY(p.Value), detailStroke))
			}
		}
	}
}
