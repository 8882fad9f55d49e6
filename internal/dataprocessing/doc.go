// Package dataprocessing loads the education workbooks and derives the
// tables shown by the dashboard.
//
// # Loading
//
// ReadRows opens the first worksheet of a workbook. Files ending in .xls are
// read with extrame/xls, all other files with excelize. The header row is
// located by its column names, so columns may appear in any order and title
// rows above the header are skipped.
//
//	records, err := dataprocessing.LoadInstitutions("data/Afbrudte_og_fuldførte_institution.xlsx")
//	if err != nil {
//	    return err
//	}
//
// Count cells that are blank or not numeric are read as 0.
//
// # Aggregation
//
// Institution rows are summed per institution type or subinstitution. Rows
// with neither dropouts nor completions describe institutions that were not
// open in that year and never contribute to a dropout rate.
//
// Subject rows are summed per subject line and direction. Only pairs that
// have both a dropout row and a completion row are kept.
//
// # Dropout rate
//
//	rate = 100 * dropouts / (dropouts + completions)
//
// The rate is undefined when the denominator is zero; such values are nil in
// every derived table.
package dataprocessing
