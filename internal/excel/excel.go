// Package excel converts between store rows and the two-sheet workbook the
// desktop view exchanges with users ("Issues" + "Steps").
package excel

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/xuri/excelize/v2"
)

const (
	issuesSheet = "Issues"
	stepsSheet  = "Steps"
)

// ErrFileNotFound marks an import path that does not exist, as opposed to a
// workbook that exists but cannot be read.
var ErrFileNotFound = errors.New("excel: file not found")

// Workbook is the tabular form of the store: one row per issue and one row per
// test step, all cells normalized to strings.
type Workbook struct {
	Issues []map[string]string `json:"issues"`
	Steps  []map[string]string `json:"steps"`
}

// Export writes the Issues sheet and, when steps exist, the Steps sheet.
// Column headers are the union of field names.
func Export(issues, steps []map[string]string, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, issuesSheet, issues); err != nil {
		return fmt.Errorf("excel: export issues: %w", err)
	}
	if len(steps) > 0 {
		if err := writeSheet(f, stepsSheet, steps); err != nil {
			return fmt.Errorf("excel: export steps: %w", err)
		}
	}

	// drop the default sheet excelize creates
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("excel: export: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("excel: write %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, name string, rows []map[string]string) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}

	headers := headerOrder(rows)
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &cells); err != nil {
		return err
	}

	for i, row := range rows {
		values := make([]any, len(headers))
		for j, h := range headers {
			values[j] = row[h]
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(name, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// headerOrder is the sorted union of field names; sorting keeps the column
// layout stable across exports.
func headerOrder(rows []map[string]string) []string {
	seen := map[string]bool{}
	var headers []string
	for _, row := range rows {
		for key := range row {
			if !seen[key] {
				seen[key] = true
				headers = append(headers, key)
			}
		}
	}
	sort.Strings(headers)
	return headers
}

// Import reads both sheets back. A missing sheet yields an empty slice and
// missing cells come back as empty strings, never a null marker.
func Import(path string) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("excel: open %s: %w", path, err)
	}
	defer f.Close()

	wb := &Workbook{}
	if wb.Issues, err = readSheet(f, issuesSheet); err != nil {
		return nil, fmt.Errorf("excel: read issues: %w", err)
	}
	if wb.Steps, err = readSheet(f, stepsSheet); err != nil {
		return nil, fmt.Errorf("excel: read steps: %w", err)
	}
	return wb, nil
}

func readSheet(f *excelize.File, name string) ([]map[string]string, error) {
	idx, err := f.GetSheetIndex(name)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return []map[string]string{}, nil
	}

	rows, err := f.GetRows(name)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []map[string]string{}, nil
	}

	headers := rows[0]
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				record[header] = row[i]
			} else {
				record[header] = ""
			}
		}
		out = append(out, record)
	}
	return out, nil
}
