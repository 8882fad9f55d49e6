// Package api contains API contract definitions for the education dashboard.
// Version v1 represents the current stable API version.
package api

import (
	"fmt"
	"strconv"
	"strings"

	"uddannelsebi/pkg/contracts/domain"
)

// Page names shown in the sidebar
const (
	PageHomepage      = "Homepage"
	PageVisualization = "Visualization"
	PagePrediction    = "Prediction"
	PageInstitutions  = "Institutioner"
	PageInstitution   = "Institution"
	PageMap           = "Kort"
)

// AllYears is the drill-down selector value for summing every year
const AllYears = "Alle år"

// Pages returns the sidebar pages in display order
func Pages() []string {
	return []string{
		PageHomepage,
		PageVisualization,
		PagePrediction,
		PageInstitutions,
		PageInstitution,
		PageMap,
	}
}

// PageRequest carries the sidebar page and the selectors of the current view
type PageRequest struct {
	Page      string `json:"page" query:"page" validate:"omitempty,oneof=Homepage Visualization Prediction Institutioner Institution Kort"`
	Type      string `json:"type" query:"type" validate:"omitempty,max=200"`
	Year      string `json:"year" query:"year" validate:"omitempty,year_or_all"`
	Line      string `json:"line" query:"line" validate:"omitempty,max=200"`
	Direction string `json:"direction" query:"direction" validate:"omitempty,max=200"`
}

// InstitutionSummaryRequest selects an institution type and optionally a year
type InstitutionSummaryRequest struct {
	Type string `json:"type" query:"type" validate:"required,max=200"`
	Year string `json:"year" query:"year" validate:"omitempty,year_or_all"`
}

// TopRequest selects a prediction measure and how many rows to rank
type TopRequest struct {
	Measure string `json:"measure" param:"measure" validate:"required,oneof=afbrudt fuldfort frafaldsprocent"`
	Limit   int    `json:"limit" query:"limit" validate:"min=1,max=100"`
}

// ChartRequest names a chart and carries the selectors it depends on
type ChartRequest struct {
	Name      string `json:"name" param:"name" validate:"required,max=64"`
	Type      string `json:"type" query:"type" validate:"omitempty,max=200"`
	Year      string `json:"year" query:"year" validate:"omitempty,year_or_all"`
	Line      string `json:"line" query:"line" validate:"omitempty,max=200"`
	Direction string `json:"direction" query:"direction" validate:"omitempty,max=200"`
	Measure   string `json:"measure" query:"measure" validate:"omitempty,oneof=afbrudt fuldfort frafaldsprocent"`
}

// ExportRequest selects the export format
type ExportRequest struct {
	Format string `json:"format" param:"format" validate:"required,oneof=csv xlsx"`
}

// ParseYear interprets the year selector of the institution drill-down.
// Empty and AllYears select every year (all is true); anything else must be
// a positive year. The institution workbook may hold years outside the
// subject columns, so a year without rows is left for the data to reject.
func ParseYear(value string) (year int, all bool, err error) {
	value = strings.TrimSpace(value)
	if value == "" || value == AllYears {
		return 0, true, nil
	}
	year, err = strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("invalid year %q", value)
	}
	if year < 1 {
		return 0, false, fmt.Errorf("year %d must be positive", year)
	}
	return year, false, nil
}

// ParseDataYear is ParseYear restricted to the year columns of the subject
// workbook.
func ParseDataYear(value string) (year int, all bool, err error) {
	year, all, err = ParseYear(value)
	if err != nil || all {
		return year, all, err
	}
	if year < domain.FirstYear || year > domain.LastYear {
		return 0, false, fmt.Errorf("year %d outside %d-%d", year, domain.FirstYear, domain.LastYear)
	}
	return year, false, nil
}
