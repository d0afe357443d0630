package excel

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestExportImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")

	issues := []map[string]string{
		{"issue_key": "PROJ-1", "summary": "Req", "issue_type": "Requirement"},
		{"issue_key": "NEW-1", "summary": "Case", "issue_type": "Test Case"},
	}
	steps := []map[string]string{
		{"issue_key": "NEW-1", "order_no": "1", "action": "open page", "expected": "shown"},
	}

	if err := Export(issues, steps, path); err != nil {
		t.Fatalf("export: %v", err)
	}
	wb, err := Import(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}

	if len(wb.Issues) != 2 {
		t.Fatalf("len(Issues) = %d", len(wb.Issues))
	}
	if wb.Issues[0]["issue_key"] != "PROJ-1" || wb.Issues[1]["summary"] != "Case" {
		t.Errorf("issues = %+v", wb.Issues)
	}
	if len(wb.Steps) != 1 || wb.Steps[0]["action"] != "open page" {
		t.Errorf("steps = %+v", wb.Steps)
	}
}

func TestExportOmitsEmptyStepsSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no_steps.xlsx")

	issues := []map[string]string{{"issue_key": "PROJ-1", "summary": "Req"}}
	if err := Export(issues, nil, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	wb, err := Import(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(wb.Steps) != 0 {
		t.Errorf("Steps = %+v, missing sheet must read as empty", wb.Steps)
	}
	if len(wb.Issues) != 1 {
		t.Errorf("Issues = %+v", wb.Issues)
	}
}

func TestImportMissingFile(t *testing.T) {
	_, err := Import(filepath.Join(t.TempDir(), "nope.xlsx"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("err = %v, want ErrFileNotFound", err)
	}
}

func TestImportBackfillsMissingCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.xlsx")

	// second row only carries the first column; the rest must come back as ""
	issues := []map[string]string{
		{"issue_key": "PROJ-1", "summary": "full row"},
		{"issue_key": "PROJ-2"},
	}
	if err := Export(issues, nil, path); err != nil {
		t.Fatalf("export: %v", err)
	}

	wb, err := Import(path)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(wb.Issues) != 2 {
		t.Fatalf("len(Issues) = %d", len(wb.Issues))
	}
	if got, ok := wb.Issues[1]["summary"]; !ok || got != "" {
		t.Errorf("missing cell = %q (present=%v), want empty string", got, ok)
	}
}

func TestHeaderOrderIsSortedUnion(t *testing.T) {
	rows := []map[string]string{
		{"summary": "a", "issue_key": "K-1"},
		{"status": "Open"},
	}
	headers := headerOrder(rows)
	want := []string{"issue_key", "status", "summary"}
	if len(headers) != len(want) {
		t.Fatalf("headers = %v", headers)
	}
	for i := range want {
		if headers[i] != want[i] {
			t.Errorf("headers = %v, want %v", headers, want)
			break
		}
	}
}
