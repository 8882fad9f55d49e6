package exporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"uddannelsebi/internal/forecast"
)

const predictionSheet = "Forudsigelse 2025"

// PredictionHeaders are the column names of the prediction table
func PredictionHeaders() []string {
	return []string{
		"Uddannelse",
		"FagLinjer",
		"FagRetning",
		"2024_afbrudt",
		"2025_afbrudt (forudsagt)",
		"2024_fuldført",
		"2025_fuldført (forudsagt)",
		"Frafaldsprocent_2025",
	}
}

// PredictionRecords renders the rows as text. Values missing on one side of
// the merge are left empty.
func PredictionRecords(rows []forecast.Prediction) [][]string {
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = []string{
			r.Education,
			r.SubjectLine,
			r.SubjectDirection,
			formatOptional(r.Dropouts2024),
			formatOptional(r.PredictedDropouts),
			formatOptional(r.Completions2024),
			formatOptional(r.PredictedCompletions),
			formatOptional(r.DropoutPercent),
		}
	}
	return records
}

// WritePredictions writes the table to w in the given format
func WritePredictions(w io.Writer, format Format, rows []forecast.Prediction) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, WriteOptions{
			Headers:   PredictionHeaders(),
			Records:   PredictionRecords(rows),
			BOMPrefix: true,
		})
	case FormatXLSX:
		return writePredictionWorkbook(w, rows)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WritePredictionFile writes the table to path, picking the format from the
// file extension.
func WritePredictionFile(path string, rows []forecast.Prediction) error {
	ext := filepath.Ext(path)
	if ext == "" {
		return fmt.Errorf("export path %q has no extension", path)
	}
	format, err := ParseFormat(ext[1:])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WritePredictions(file, format, rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writePredictionWorkbook(w io.Writer, rows []forecast.Prediction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), predictionSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := PredictionHeaders()
	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(predictionSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(predictionSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	for i, r := range rows {
		row := []interface{}{
			r.Education,
			r.SubjectLine,
			r.SubjectDirection,
			cellValue(r.Dropouts2024),
			cellValue(r.PredictedDropouts),
			cellValue(r.Completions2024),
			cellValue(r.PredictedCompletions),
			cellValue(r.DropoutPercent),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(predictionSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if len(rows) > 0 {
		decimals, err := f.NewStyle(&excelize.Style{NumFmt: 2})
		if err != nil {
			return fmt.Errorf("failed to create number style: %w", err)
		}
		end, _ := excelize.CoordinatesToCellName(len(headers), len(rows)+1)
		if err := f.SetCellStyle(predictionSheet, "D2", end, decimals); err != nil {
			return fmt.Errorf("failed to style values: %w", err)
		}
	}
	if err := f.SetColWidth(predictionSheet, "A", "C", 28); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// cellValue leaves undefined values as blank cells
func cellValue(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
