package dataprocessing

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	apperrors "uddannelsebi/internal/errors"
	"uddannelsebi/pkg/contracts/domain"
)

// maxXLSRows bounds how many rows are read from a legacy .xls sheet
const maxXLSRows = 100000

var (
	ErrEmptyWorkbook  = errors.New("workbook has no worksheet")
	ErrEmptyWorksheet = errors.New("worksheet is empty")
	ErrHeaderNotFound = errors.New("header row not found")
)

// Column names of the institution workbook
const (
	colInstitution     = "Institution"
	colInstitutionType = "InstitutionType"
	colSubinstitution  = "Subinstitution"
	colYear            = "År"
	colDropouts        = "Afbrudte"
	colCompletions     = "Fuldførte"
)

// Column names of the subject workbook
const (
	colEducation = "Uddannelse"
	colLine      = "FagLinjer"
	colDirection = "FagRetning"
	colType      = "Type"
)

// headerMarkers are Institution values that identify a repeated header row
// inside the data block of the institution workbook.
var headerMarkers = map[string]bool{
	"Institution":        true,
	"HovedInstitutionTx": true,
	"Hovedinstitution":   true,
}

// ReadRows returns the cell text of the first worksheet. Legacy .xls files are
// read with extrame/xls, everything else with excelize.
func ReadRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read workbook %s", path), err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open %s", path), err)
		}
		if workbook.NumSheets() == 0 {
			return nil, apperrors.NewParsingError(path, ErrEmptyWorkbook)
		}
		rows := workbook.ReadAllCells(maxXLSRows)
		if len(rows) == 0 {
			return nil, apperrors.NewParsingError(path, ErrEmptyWorksheet)
		}
		return rows, nil
	default:
		f, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to open %s", path), err)
		}
		defer func() { _ = f.Close() }()

		sheet := f.GetSheetName(0)
		if sheet == "" {
			return nil, apperrors.NewParsingError(path, ErrEmptyWorkbook)
		}
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
		}
		if len(rows) == 0 {
			return nil, apperrors.NewParsingError(path, ErrEmptyWorksheet)
		}
		return rows, nil
	}
}

// LoadInstitutions reads the institution workbook at path
func LoadInstitutions(path string) ([]domain.InstitutionRecord, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	records, err := ParseInstitutionRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("institution workbook loaded",
		slog.String("path", path),
		slog.Int("rows", len(rows)),
		slog.Int("records", len(records)))
	return records, nil
}

// LoadSubjects reads the subject workbook at path
func LoadSubjects(path string) ([]domain.SubjectRecord, error) {
	rows, err := ReadRows(path)
	if err != nil {
		return nil, err
	}
	records, err := ParseSubjectRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	slog.Debug("subject workbook loaded",
		slog.String("path", path),
		slog.Int("rows", len(rows)),
		slog.Int("records", len(records)))
	return records, nil
}

// ParseInstitutionRows maps worksheet rows onto institution records.
// Repeated header rows are dropped and missing counts become 0.
func ParseInstitutionRows(rows [][]string) ([]domain.InstitutionRecord, error) {
	required := []string{colInstitution, colInstitutionType, colSubinstitution, colYear, colDropouts, colCompletions}
	headerRow, columns, err := findHeader(rows, required)
	if err != nil {
		return nil, err
	}

	records := make([]domain.InstitutionRecord, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if isBlank(row) {
			continue
		}
		institution := cell(row, columns[colInstitution])
		if headerMarkers[institution] {
			continue
		}
		records = append(records, domain.InstitutionRecord{
			Institution:     institution,
			InstitutionType: cell(row, columns[colInstitutionType]),
			Subinstitution:  cell(row, columns[colSubinstitution]),
			Year:            int(ParseNumber(cell(row, columns[colYear]))),
			Dropouts:        ParseNumber(cell(row, columns[colDropouts])),
			Completions:     ParseNumber(cell(row, columns[colCompletions])),
		})
	}
	return records, nil
}

// ParseSubjectRows maps worksheet rows onto subject records. Every year
// column from 2015 to 2024 must be present; non-numeric counts become 0.
func ParseSubjectRows(rows [][]string) ([]domain.SubjectRecord, error) {
	required := []string{colEducation, colLine, colDirection, colType}
	for _, y := range domain.Years() {
		required = append(required, strconv.Itoa(y))
	}
	headerRow, columns, err := findHeader(rows, required)
	if err != nil {
		return nil, err
	}

	records := make([]domain.SubjectRecord, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if isBlank(row) {
			continue
		}
		rec := domain.SubjectRecord{
			Education:        cell(row, columns[colEducation]),
			SubjectLine:      cell(row, columns[colLine]),
			SubjectDirection: cell(row, columns[colDirection]),
			Type:             domain.OutcomeType(cell(row, columns[colType])),
		}
		if rec.Type == colType {
			continue
		}
		for _, y := range domain.Years() {
			rec.Counts.Set(y, ParseNumber(cell(row, columns[strconv.Itoa(y)])))
		}
		records = append(records, rec)
	}
	return records, nil
}

// findHeader locates the first row holding every required column name and
// returns its index together with a name to column index mapping.
func findHeader(rows [][]string, required []string) (int, map[string]int, error) {
	for i, row := range rows {
		columns := make(map[string]int, len(row))
		for j, h := range row {
			name := normalizeHeader(h)
			if _, seen := columns[name]; !seen && name != "" {
				columns[name] = j
			}
		}
		missing := ""
		for _, col := range required {
			if _, ok := columns[col]; !ok {
				missing = col
				break
			}
		}
		if missing == "" {
			return i, columns, nil
		}
		// A first row carrying most of the columns is the header
		if i == 0 && len(columns) >= len(required)/2 {
			return -1, nil, apperrors.NewParsingError(
				fmt.Sprintf("missing required column %q", missing), ErrHeaderNotFound).
				WithContext("column", missing)
		}
	}
	return -1, nil, apperrors.NewParsingError(
		fmt.Sprintf("none of %d rows holds the columns %s", len(rows), strings.Join(required, ", ")),
		ErrHeaderNotFound)
}

// normalizeHeader trims a header cell and stringifies numeric year headers
// such as "2015.0".
func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	if f, err := strconv.ParseFloat(h, 64); err == nil && f == math.Trunc(f) && f >= 1900 && f < 3000 {
		return strconv.Itoa(int(f))
	}
	return h
}

// ParseNumber converts a cell to a number; anything non-numeric is 0
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.ReplaceAll(s, " ", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
