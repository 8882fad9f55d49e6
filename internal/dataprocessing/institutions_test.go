package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uddannelsebi/internal/shared/testutil"
	"uddannelsebi/pkg/contracts/domain"
)

func TestDropoutRate(t *testing.T) {
	tests := []struct {
		name        string
		dropouts    float64
		completions float64
		want        float64
		defined     bool
	}{
		{"typical", 30, 70, 30, true},
		{"only dropouts", 5, 0, 100, true},
		{"only completions", 0, 12, 0, true},
		{"no students", 0, 0, 0, false},
		{"negative total", -3, 1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DropoutRate(tt.dropouts, tt.completions)
			assert.Equal(t, tt.defined, ok)
			assert.InDelta(t, tt.want, got, 1e-9)

			ptr := RatePtr(tt.dropouts, tt.completions)
			if tt.defined {
				require.NotNil(t, ptr)
				assert.InDelta(t, tt.want, *ptr, 1e-9)
			} else {
				assert.Nil(t, ptr)
			}
		})
	}
}

func TestInstitutionTypeTotals(t *testing.T) {
	records := testutil.SampleInstitutions()

	byDropouts := InstitutionTypeTotals(records, MeasureDropouts)
	require.Len(t, byDropouts, 2)
	assert.Equal(t, "Professionshøjskoler", byDropouts[0].InstitutionType)
	assert.Equal(t, 50.0, byDropouts[0].Dropouts)
	assert.Equal(t, 150.0, byDropouts[0].Completions)
	assert.Equal(t, "Erhvervsakademier", byDropouts[1].InstitutionType)
	assert.Equal(t, 15.0, byDropouts[1].Dropouts)
	assert.Equal(t, 55.0, byDropouts[1].Completions)

	// Equal totals fall back to name order
	tied := []domain.InstitutionRecord{
		{InstitutionType: "B", Dropouts: 1, Completions: 1},
		{InstitutionType: "A", Dropouts: 1, Completions: 1},
	}
	totals := InstitutionTypeTotals(tied, MeasureCompletions)
	assert.Equal(t, "A", totals[0].InstitutionType)
	assert.Equal(t, "B", totals[1].InstitutionType)
}

func TestActiveInstitutions(t *testing.T) {
	active := ActiveInstitutions(testutil.SampleInstitutions())

	require.Len(t, active, 4)
	for _, r := range active {
		assert.True(t, r.Active(), "closed row %+v must be excluded", r.InstitutionRecord)
	}
	assert.InDelta(t, 30.0, active[0].DropoutRate, 1e-9)
}

func TestInstitutionTypesAndYears(t *testing.T) {
	records := testutil.SampleInstitutions()

	assert.Equal(t, []string{"Erhvervsakademier", "Professionshøjskoler"}, InstitutionTypes(records))
	assert.Equal(t, []int{2022, 2023}, InstitutionYears(records, "Erhvervsakademier"))
	assert.Empty(t, InstitutionYears(records, "Universiteter"))

	closedOnly := []domain.InstitutionRecord{{InstitutionType: "Lukket", Year: 2020}}
	assert.Empty(t, InstitutionTypes(closedOnly))
}

func TestSummarizeInstitution(t *testing.T) {
	records := append(testutil.SampleInstitutions(), domain.InstitutionRecord{
		Institution: "Erhvervsakademi Bornholm", InstitutionType: "Erhvervsakademier",
		Subinstitution: "Erhvervsakademi Bornholm", Year: 2022, Dropouts: 2, Completions: 8,
	})
	year := func(y int) *int { return &y }

	tests := []struct {
		name            string
		institutionType string
		year            *int
		wantErr         error
		wantDropouts    float64
		wantCompletions float64
		wantRate        float64
		wantRows        int
	}{
		{
			name:            "all years",
			institutionType: "Professionshøjskoler",
			wantDropouts:    50,
			wantCompletions: 150,
			wantRate:        25,
			wantRows:        2,
		},
		{
			name:            "single year",
			institutionType: "Professionshøjskoler",
			year:            year(2023),
			wantDropouts:    20,
			wantCompletions: 80,
			wantRate:        20,
			wantRows:        1,
		},
		{
			name:            "single year sums every row",
			institutionType: "Erhvervsakademier",
			year:            year(2022),
			wantDropouts:    12,
			wantCompletions: 48,
			wantRate:        20,
			wantRows:        2,
		},
		{
			name:            "single year skips inactive rows",
			institutionType: "Erhvervsakademier",
			year:            year(2023),
			wantDropouts:    5,
			wantCompletions: 15,
			wantRate:        25,
			wantRows:        1,
		},
		{
			name:            "unknown year",
			institutionType: "Erhvervsakademier",
			year:            year(2019),
			wantErr:         ErrNoData,
		},
		{
			name:            "unknown type",
			institutionType: "Universiteter",
			wantErr:         ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, err := SummarizeInstitution(records, tt.institutionType, tt.year)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, summary)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantDropouts, summary.Dropouts)
			assert.Equal(t, tt.wantCompletions, summary.Completions)
			assert.Equal(t, tt.wantRows, summary.Rows)
			require.NotNil(t, summary.DropoutRate)
			assert.InDelta(t, tt.wantRate, *summary.DropoutRate, 1e-9)
		})
	}
}

func TestRatesByType(t *testing.T) {
	groups := RatesByType(testutil.SampleInstitutions())

	require.Len(t, groups, 2)
	assert.Equal(t, "Erhvervsakademier", groups[0].InstitutionType)
	assert.InDeltaSlice(t, []float64{20, 25}, groups[0].Rates, 1e-9)
	assert.Equal(t, "Professionshøjskoler", groups[1].InstitutionType)
	assert.InDeltaSlice(t, []float64{30, 20}, groups[1].Rates, 1e-9)
}

func TestSubinstitutionTotals(t *testing.T) {
	totals := SubinstitutionTotals(testutil.SampleInstitutions())

	require.Len(t, totals, 3)
	assert.Equal(t, SubinstitutionTotal{Subinstitution: "Erhvervsakademi Aarhus", Dropouts: 10, Completions: 40}, totals[0])
	assert.Equal(t, SubinstitutionTotal{Subinstitution: "Københavns Professionshøjskole", Dropouts: 50, Completions: 150}, totals[1])
	assert.Equal(t, SubinstitutionTotal{Subinstitution: "Ukendt Skole", Dropouts: 5, Completions: 15}, totals[2])
}
