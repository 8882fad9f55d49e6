package charts

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Plot size for the gonum renderer
const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 5 * vg.Inch
)

// Group is a labelled sample
type Group struct {
	Label  string
	Values []float64
}

// BoxPlot draws one box per non-empty group. With points set, every
// observation is drawn on top of its box.
func BoxPlot(title, yLabel string, groups []Group, points bool) ([]byte, error) {
	p := newPlot(title, "", yLabel)

	var names []string
	for _, g := range groups {
		if len(g.Values) == 0 {
			continue
		}
		loc := float64(len(names))
		box, err := plotter.NewBoxPlot(vg.Points(30), loc, plotter.Values(g.Values))
		if err != nil {
			return nil, fmt.Errorf("box for %q: %w", g.Label, err)
		}
		box.FillColor = color.RGBA{R: 70, G: 130, B: 180, A: 90}
		p.Add(box)

		if points {
			xys := make(plotter.XYs, len(g.Values))
			for i, v := range g.Values {
				xys[i] = plotter.XY{X: loc, Y: v}
			}
			s, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, fmt.Errorf("points for %q: %w", g.Label, err)
			}
			s.GlyphStyle.Shape = draw.CircleGlyph{}
			s.GlyphStyle.Radius = vg.Points(2)
			s.GlyphStyle.Color = color.RGBA{R: 214, G: 39, B: 40, A: 160}
			p.Add(s)
		}
		names = append(names, g.Label)
	}
	if len(names) == 0 {
		return nil, ErrNoData
	}
	p.NominalX(names...)
	return encode(p)
}

// CountChart draws labelled counts as bars
func CountChart(title, yLabel string, bars []Bar) ([]byte, error) {
	if len(bars) == 0 {
		return nil, ErrNoData
	}
	p := newPlot(title, "", yLabel)

	values := make(plotter.Values, len(bars))
	names := make([]string, len(bars))
	for i, b := range bars {
		values[i] = b.Value
		names[i] = b.Label
	}
	bc, err := plotter.NewBarChart(values, vg.Points(40))
	if err != nil {
		return nil, fmt.Errorf("count bars: %w", err)
	}
	bc.Color = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	bc.LineStyle.Width = vg.Length(0)
	p.Add(bc)
	p.NominalX(names...)
	p.Y.Min = 0
	return encode(p)
}

// XY is a labelled point
type XY struct {
	Label string
	X, Y  float64
}

// ScatterGroup is a set of points sharing a colour and legend entry
type ScatterGroup struct {
	Name   string
	Points []XY
}

// Scatter draws every group in its own colour with a legend
func Scatter(title, xLabel, yLabel string, groups []ScatterGroup) ([]byte, error) {
	p := newPlot(title, xLabel, yLabel)

	drawn := 0
	for i, g := range groups {
		if len(g.Points) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(g.Points))
		for j, pt := range g.Points {
			xys[j] = plotter.XY{X: pt.X, Y: pt.Y}
		}
		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("scatter %q: %w", g.Name, err)
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(3)
		s.GlyphStyle.Color = plotutil.Color(i)
		p.Add(s)
		p.Legend.Add(g.Name, s)
		drawn++
	}
	if drawn == 0 {
		return nil, ErrNoData
	}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	return encode(p)
}

// Bubble is a map marker. Size scales the radius and Shade picks the colour.
type Bubble struct {
	Label string
	Lat   float64
	Lon   float64
	Size  float64
	Shade float64
}

// BubbleMap places bubbles by longitude and latitude. Radii grow with the
// square root of Size; colours run from blue to red with Shade.
func BubbleMap(title string, bubbles []Bubble) ([]byte, error) {
	if len(bubbles) == 0 {
		return nil, ErrNoData
	}
	p := newPlot(title, "Længdegrad", "Breddegrad")

	maxSize := 0.0
	minShade, maxShade := math.Inf(1), math.Inf(-1)
	xys := make(plotter.XYs, len(bubbles))
	labels := make([]string, len(bubbles))
	for i, b := range bubbles {
		xys[i] = plotter.XY{X: b.Lon, Y: b.Lat}
		labels[i] = b.Label
		maxSize = math.Max(maxSize, b.Size)
		minShade = math.Min(minShade, b.Shade)
		maxShade = math.Max(maxShade, b.Shade)
	}
	if maxShade <= minShade {
		maxShade = minShade + 1
	}

	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(minShade)
	cmap.SetMax(maxShade)

	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("bubbles: %w", err)
	}
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		style := draw.GlyphStyle{Shape: draw.CircleGlyph{}, Radius: vg.Points(4)}
		if maxSize > 0 {
			style.Radius = vg.Points(4 + 21*math.Sqrt(math.Max(bubbles[i].Size, 0)/maxSize))
		}
		c, err := cmap.At(bubbles[i].Shade)
		if err != nil {
			c = color.Gray{Y: 128}
		}
		style.Color = c
		return style
	}
	p.Add(s)

	names, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
	if err != nil {
		return nil, fmt.Errorf("bubble labels: %w", err)
	}
	p.Add(names)
	p.Add(plotter.NewGrid())

	// Keep the whole of Denmark in view
	p.X.Min, p.X.Max = 8, 15.5
	p.Y.Min, p.Y.Max = 54.5, 57.8
	return encode(p)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func encode(p *plot.Plot) ([]byte, error) {
	w, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return nil, fmt.Errorf("encode plot %q: %w", p.Title.Text, err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write plot %q: %w", p.Title.Text, err)
	}
	return buf.Bytes(), nil
}
