package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertPNG(t *testing.T, data []byte) {
	t.Helper()
	require.NotEmpty(t, data)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Greater(t, img.Bounds().Dx(), 0)
}

func TestBarChart(t *testing.T) {
	tests := []struct {
		name string
		bars []Bar
	}{
		{"typical", []Bar{{"Professionshøjskoler", 150}, {"Erhvervsakademier", 55}}},
		{"all zero", []Bar{{"A", 0}, {"B", 0}}},
		{"negative", []Bar{{"A", -4}, {"B", 10}}},
		{"many labels", manyBars(25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := BarChart("Fuldførte pr. InstitutionType", tt.bars)
			require.NoError(t, err)
			assertPNG(t, data)
		})
	}
}

func TestBarChart_Empty(t *testing.T) {
	_, err := BarChart("tom", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestStackedBarChart(t *testing.T) {
	stacks := []Stack{
		{Label: "2015", Parts: []Bar{{"Fuldført", 90}, {"Afbrudt", 10}}},
		{Label: "2016", Parts: []Bar{{"Fuldført", 92}, {"Afbrudt", 11}}},
	}
	data, err := StackedBarChart("Fuldført vs. Afbrudt", stacks)
	require.NoError(t, err)
	assertPNG(t, data)

	zero := []Stack{{Label: "2015", Parts: []Bar{{"Fuldført", 0}}}}
	data, err = StackedBarChart("tom", zero)
	require.NoError(t, err)
	assertPNG(t, data)

	_, err = StackedBarChart("tom", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestLineChart(t *testing.T) {
	years := []float64{2015, 2016, 2017}
	series := []Series{
		{Name: "Fuldført", X: years, Y: []float64{90, 92, 94}, Color: ColorCompleted, Dots: true},
		{Name: "Afbrudt", X: years, Y: []float64{10, 11, 12}, Color: ColorDropout},
		{Name: "2025 (forudsagt)", X: []float64{2025}, Y: []float64{20}, Color: ColorPredicted, Dashed: true, Dots: true},
	}

	data, err := LineChart("Tidsserie", "År", "Antal studerende", series)
	require.NoError(t, err)
	assertPNG(t, data)
}

func TestLineChart_Invalid(t *testing.T) {
	_, err := LineChart("tom", "", "", nil)
	assert.ErrorIs(t, err, ErrNoData)

	_, err = LineChart("skæv", "", "", []Series{{Name: "x", X: []float64{1, 2}, Y: []float64{1}}})
	assert.ErrorIs(t, err, ErrNoData)
}

func manyBars(n int) []Bar {
	bars := make([]Bar, n)
	for i := range bars {
		bars[i] = Bar{Label: string(rune('A' + i%26)), Value: float64(i * 3)}
	}
	return bars
}
