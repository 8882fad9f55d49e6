package testutil

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	"uddannelsebi/pkg/contracts/domain"
)

// Workbook file names used by fixtures
const (
	InstitutionFile = "Afbrudte_og_fuldførte_institution.xlsx"
	SubjectFile     = "Uddannelse_combined.xlsx"
)

// WriteWorkbook saves rows to an .xlsx file in dir and returns its path
func WriteWorkbook(t *testing.T, dir, name string, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to build cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("failed to write row %d: %v", i+1, err)
		}
	}

	path := filepath.Join(dir, name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook %s: %v", path, err)
	}
	return path
}

// WriteFile writes raw bytes to dir/name and returns the path
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// WriteSampleData writes both sample workbooks to dir
func WriteSampleData(t *testing.T, dir string) {
	t.Helper()

	WriteWorkbook(t, dir, InstitutionFile, InstitutionRows(SampleInstitutions()))
	WriteWorkbook(t, dir, SubjectFile, SubjectRows(SampleSubjects()))
}

// InstitutionRows converts records to worksheet rows including the header
func InstitutionRows(records []domain.InstitutionRecord) [][]interface{} {
	rows := [][]interface{}{
		{"Institution", "InstitutionType", "Subinstitution", "År", "Afbrudte", "Fuldførte"},
	}
	for _, r := range records {
		rows = append(rows, []interface{}{
			r.Institution, r.InstitutionType, r.Subinstitution, r.Year, r.Dropouts, r.Completions,
		})
	}
	return rows
}

// SubjectRows converts records to worksheet rows including the header
func SubjectRows(records []domain.SubjectRecord) [][]interface{} {
	header := []interface{}{"Uddannelse", "FagLinjer", "FagRetning", "Type"}
	for _, y := range domain.Years() {
		header = append(header, strconv.Itoa(y))
	}
	rows := [][]interface{}{header}
	for _, r := range records {
		row := []interface{}{r.Education, r.SubjectLine, r.SubjectDirection, string(r.Type)}
		for _, y := range domain.Years() {
			row = append(row, r.Counts.At(y))
		}
		rows = append(rows, row)
	}
	return rows
}

// Linear returns counts that grow by step per year starting at base
func Linear(base, step float64) domain.YearCounts {
	var c domain.YearCounts
	for i, y := range domain.Years() {
		c.Set(y, base+step*float64(i))
	}
	return c
}

// SampleInstitutions is a small institution dataset with one closed row
func SampleInstitutions() []domain.InstitutionRecord {
	return []domain.InstitutionRecord{
		{Institution: "Københavns Professionshøjskole", InstitutionType: "Professionshøjskoler", Subinstitution: "Københavns Professionshøjskole", Year: 2022, Dropouts: 30, Completions: 70},
		{Institution: "Københavns Professionshøjskole", InstitutionType: "Professionshøjskoler", Subinstitution: "Københavns Professionshøjskole", Year: 2023, Dropouts: 20, Completions: 80},
		{Institution: "Erhvervsakademi Aarhus", InstitutionType: "Erhvervsakademier", Subinstitution: "Erhvervsakademi Aarhus", Year: 2022, Dropouts: 10, Completions: 40},
		{Institution: "Erhvervsakademi Aarhus", InstitutionType: "Erhvervsakademier", Subinstitution: "Erhvervsakademi Aarhus", Year: 2023, Dropouts: 0, Completions: 0},
		{Institution: "Ukendt Skole", InstitutionType: "Erhvervsakademier", Subinstitution: "Ukendt Skole", Year: 2023, Dropouts: 5, Completions: 15},
	}
}

// SampleSubjects is a small subject dataset. "Sygepleje" exists for both
// outcome types, "Jura" only as dropouts.
func SampleSubjects() []domain.SubjectRecord {
	return []domain.SubjectRecord{
		{Education: "Sygeplejerske", SubjectLine: "Sundhed", SubjectDirection: "Sygepleje", Type: domain.OutcomeDropout, Counts: Linear(10, 1)},
		{Education: "Sygeplejerske", SubjectLine: "Sundhed", SubjectDirection: "Sygepleje", Type: domain.OutcomeCompleted, Counts: Linear(90, 2)},
		{Education: "Fysioterapeut", SubjectLine: "Sundhed", SubjectDirection: "Fysioterapi", Type: domain.OutcomeDropout, Counts: Linear(5, 1)},
		{Education: "Fysioterapeut", SubjectLine: "Sundhed", SubjectDirection: "Fysioterapi", Type: domain.OutcomeCompleted, Counts: Linear(45, 1)},
		{Education: "Jurist", SubjectLine: "Samfund", SubjectDirection: "Jura", Type: domain.OutcomeDropout, Counts: Linear(20, 3)},
	}
}
