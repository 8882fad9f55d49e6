package forecast

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uddannelsebi/pkg/contracts/domain"
)

func TestTopN(t *testing.T) {
	result, err := Run(context.Background(), predictionFixture())
	require.NoError(t, err)

	tests := []struct {
		name    string
		measure Measure
		n       int
		want    []string
	}{
		{"dropouts skip missing side", MeasureDropouts, DefaultTop, []string{"C", "A", "B"}},
		{"completions", MeasureCompletions, DefaultTop, []string{"A", "D", "B"}},
		{"percent needs both sides", MeasureDropoutPercent, DefaultTop, []string{"B", "A"}},
		{"limited", MeasureDropouts, 1, []string{"C"}},
		{"zero", MeasureDropouts, 0, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			top := TopN(result.Rows, tt.measure, tt.n)
			got := make([]string, 0, len(top))
			for _, p := range top {
				got = append(got, p.SubjectDirection)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMeasure(t *testing.T) {
	m, err := ParseMeasure("frafaldsprocent")
	require.NoError(t, err)
	assert.Equal(t, MeasureDropoutPercent, m)
	assert.Contains(t, m.Title(), "frafaldsprocent")

	_, err = ParseMeasure("afbrudte")
	assert.Error(t, err)
}

func TestDirections(t *testing.T) {
	result, err := Run(context.Background(), predictionFixture())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C", "D"}, Directions(result.Rows))
}

func TestDirection(t *testing.T) {
	result, err := Run(context.Background(), predictionFixture())
	require.NoError(t, err)

	history, err := result.Direction("B")
	require.NoError(t, err)

	assert.Equal(t, domain.OutcomeDropout, history.Dropout.Outcome)
	assert.Equal(t, domain.Years(), history.Dropout.Years)
	assert.Equal(t, 5.0, history.Dropout.Values[0])
	assert.Equal(t, 14.0, history.Dropout.Values[9])
	assert.Equal(t, domain.PredictionYear, history.Dropout.Year)
	assert.InDelta(t, 15.0, history.Dropout.Predicted, 1e-6)

	assert.Equal(t, 45.0, history.Completed.Values[0])
	assert.InDelta(t, 55.0, history.Completed.Predicted, 1e-6)
}

func TestDirection_Incomplete(t *testing.T) {
	result, err := Run(context.Background(), predictionFixture())
	require.NoError(t, err)

	for _, name := range []string{"C", "D", "Ukendt"} {
		_, err := result.Direction(name)
		assert.ErrorIs(t, err, ErrDirectionIncomplete, name)
	}
}
