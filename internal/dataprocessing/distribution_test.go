package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uddannelsebi/internal/shared/testutil"
)

func TestTypeCounts(t *testing.T) {
	counts := TypeCounts(testutil.SampleSubjects())

	require.Len(t, counts, 2)
	assert.Equal(t, LabelCount{Label: "Afbrudt", Count: 3}, counts[0])
	assert.Equal(t, LabelCount{Label: "Fuldført", Count: 2}, counts[1])
}

func TestYearLevels(t *testing.T) {
	levels := YearLevels(testutil.SampleSubjects(), 2015)

	require.Len(t, levels, 2)
	assert.Equal(t, "Afbrudt", levels[0].Label)
	assert.Equal(t, []float64{10, 5, 20}, levels[0].Values)
	assert.Equal(t, "Fuldført", levels[1].Label)
	assert.Equal(t, []float64{90, 45}, levels[1].Values)
}

func TestBoxSummary(t *testing.T) {
	stats := BoxSummary([]float64{9, 1, 5, 3, 7})

	assert.Equal(t, 5, stats.N)
	assert.Equal(t, 1.0, stats.Min)
	assert.Equal(t, 3.0, stats.Q1)
	assert.Equal(t, 5.0, stats.Median)
	assert.Equal(t, 7.0, stats.Q3)
	assert.Equal(t, 9.0, stats.Max)
	assert.InDelta(t, 5.0, stats.Mean, 1e-9)

	assert.Equal(t, BoxStats{}, BoxSummary(nil))
}

func TestBoxSummary_DoesNotReorderInput(t *testing.T) {
	values := []float64{3, 1, 2}
	BoxSummary(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestYearScatter(t *testing.T) {
	points := YearScatter(testutil.SampleSubjects(), 2023, 2024)

	require.Len(t, points, 5)
	assert.Equal(t, Point{Label: "Sygepleje", Group: "Afbrudt", X: 18, Y: 19}, points[0])
	assert.Equal(t, Point{Label: "Jura", Group: "Afbrudt", X: 44, Y: 47}, points[4])
}
