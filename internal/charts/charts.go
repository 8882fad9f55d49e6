// Package charts renders dashboard figures to PNG.
//
// Bar, stacked bar and line charts are drawn with go-chart. Box plots,
// count charts, scatter plots and the bubble map are drawn with gonum/plot.
// Every function returns the encoded image and never touches the disk.
package charts

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ErrNoData is returned when a chart would have nothing to draw
var ErrNoData = errors.New("nothing to plot")

// Default canvas size in pixels
const (
	DefaultWidth  = 1000
	DefaultHeight = 500
)

// Palette shared by both renderers
const (
	ColorCompleted = "1f77b4"
	ColorDropout   = "d62728"
	ColorPredicted = "2ca02c"
	ColorNeutral   = "4682b4"
)

// Bar is one labelled value
type Bar struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// BarChart draws one bar per value in the given order
func BarChart(title string, bars []Bar) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	values := make([]chart.Value, len(bars))
	lo, hi := 0.0, 0.0
	for i, b := range bars {
		values[i] = chart.Value{
			Label: b.Label,
			Value: b.Value,
			Style: chart.Style{
				FillColor:   drawing.ColorFromHex(ColorNeutral),
				StrokeColor: drawing.ColorFromHex(ColorNeutral),
			},
		}
		lo = math.Min(lo, b.Value)
		hi = math.Max(hi, b.Value)
	}

	bc := chart.BarChart{
		Title:      title,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		BarWidth:   barWidth(len(bars)),
		BarSpacing: 4,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.Style{TextRotationDegrees: labelRotation(len(bars))},
		YAxis:      chart.YAxis{Range: valueRange(lo, hi)},
		Bars:       values,
	}

	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart %q: %w", title, err)
	}
	return buf.Bytes(), nil
}

// Stack is one bar built from several parts
type Stack struct {
	Label string `json:"label"`
	Parts []Bar  `json:"parts"`
}

// StackedBarChart draws one stacked bar per stack. Parts are coloured by
// position so the same part index has the same colour in every stack.
func StackedBarChart(title string, stacks []Stack) ([]byte, error) {
	if len(stacks) == 0 {
		return nil, ErrNoData
	}

	colors := []string{ColorCompleted, ColorDropout, ColorPredicted, ColorNeutral}
	bars := make([]chart.StackedBar, len(stacks))
	total := 0.0
	for i, s := range stacks {
		bar := chart.StackedBar{Name: s.Label}
		for j, part := range s.Parts {
			c := drawing.ColorFromHex(colors[j%len(colors)])
			bar.Values = append(bar.Values, chart.Value{
				Label: part.Label,
				Value: part.Value,
				Style: chart.Style{FillColor: c, StrokeColor: c},
			})
			total += part.Value
		}
		bars[i] = bar
	}
	if total <= 0 {
		// An all-zero stack has no height to scale against
		flat := make([]Bar, len(stacks))
		for i, s := range stacks {
			flat[i] = Bar{Label: s.Label}
		}
		return BarChart(title, flat)
	}

	sbc := chart.StackedBarChart{
		Title:      title,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		BarSpacing: 12,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Bars:       bars,
	}

	var buf bytes.Buffer
	if err := sbc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render stacked bar chart %q: %w", title, err)
	}
	return buf.Bytes(), nil
}

// Series is one line of a line chart
type Series struct {
	Name   string
	X      []float64
	Y      []float64
	Color  string
	Dashed bool
	Dots   bool
}

// LineChart draws the series on shared axes with a legend. Series with a
// single point are padded so go-chart can build a range.
func LineChart(title, xName, yName string, series []Series) ([]byte, error) {
	if len(series) == 0 {
		return nil, ErrNoData
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	xlo, xhi := math.Inf(1), math.Inf(-1)
	out := make([]chart.Series, 0, len(series))
	for _, s := range series {
		if len(s.X) == 0 || len(s.X) != len(s.Y) {
			return nil, fmt.Errorf("series %q: %w", s.Name, ErrNoData)
		}
		xs, ys := s.X, s.Y
		if len(xs) == 1 {
			xs = []float64{xs[0], xs[0]}
			ys = []float64{ys[0], ys[0]}
		}
		for i := range xs {
			lo, hi = math.Min(lo, ys[i]), math.Max(hi, ys[i])
			xlo, xhi = math.Min(xlo, xs[i]), math.Max(xhi, xs[i])
		}

		c := drawing.ColorFromHex(s.Color)
		style := chart.Style{StrokeColor: c, StrokeWidth: 2}
		if s.Dashed {
			style.StrokeDashArray = []float64{5, 5}
		}
		if s.Dots {
			style.DotColor = c
			style.DotWidth = 4
		}
		out = append(out, chart.ContinuousSeries{Name: s.Name, XValues: xs, YValues: ys, Style: style})
	}
	if xhi == xlo {
		xhi = xlo + 1
	}

	ch := chart.Chart{
		Title:      title,
		Width:      DefaultWidth,
		Height:     DefaultHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           xName,
			Range:          &chart.ContinuousRange{Min: xlo, Max: xhi},
			ValueFormatter: yearFormatter,
		},
		YAxis:  chart.YAxis{Name: yName, Range: valueRange(math.Min(lo, 0), hi)},
		Series: out,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render line chart %q: %w", title, err)
	}
	return buf.Bytes(), nil
}

// valueRange pads the data range and keeps it non-empty
func valueRange(lo, hi float64) *chart.ContinuousRange {
	if hi <= lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.1
	if lo < 0 {
		lo -= pad
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + pad}
}

func barWidth(n int) int {
	w := (DefaultWidth-120)/n - 4
	switch {
	case w < 8:
		return 8
	case w > 80:
		return 80
	}
	return w
}

func labelRotation(n int) float64 {
	if n > 6 {
		return 45
	}
	return 0
}

func yearFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.0f", f)
	}
	return ""
}
