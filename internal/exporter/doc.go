// Package exporter writes the 2025 prediction table to CSV or xlsx.
//
// CSV output starts with a UTF-8 BOM so Excel opens the Danish column names
// correctly. Values missing after the outer merge of the two models are left
// empty in both formats.
//
//	rows := result.Rows
//	err := exporter.WritePredictions(w, exporter.FormatXLSX, rows)
package exporter
