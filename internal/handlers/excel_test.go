package handlers

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/noh03/rtmsync/internal/models"
	"github.com/noh03/rtmsync/internal/services"
)

func excelRouter(t *testing.T) (*gin.Engine, *services.IssueService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)
	h := NewExcelHandler(db)

	r := gin.New()
	r.POST("/api/excel/export", h.Export)
	r.POST("/api/excel/import", h.Import)
	return r, services.NewIssueService(db)
}

func TestExcelExportImportThroughStore(t *testing.T) {
	r, store := excelRouter(t)
	path := filepath.Join(t.TempDir(), "store.xlsx")

	store.Create(models.KindRequirement, map[string]any{"issue_key": "PROJ-1", "summary": "Req"})
	store.Create(models.KindTestCase, map[string]any{
		"issue_key":     "PROJ-2",
		"summary":       "Case",
		"preconditions": "logged out",
		"steps": []any{
			map[string]any{"action": "open page", "expected": "shown"},
		},
	})

	w := doJSON(r, http.MethodPost, "/api/excel/export", map[string]any{"path": path})
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body = %s", w.Code, w.Body.String())
	}

	// wipe the summary, re-import, the workbook row must restore it
	rec, _ := store.FindByKey("PROJ-1")
	store.Update(rec.Fields().ID, rec.Kind(), map[string]any{"summary": "wiped"})

	w = doJSON(r, http.MethodPost, "/api/excel/import", map[string]any{"path": path})
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", w.Code, w.Body.String())
	}

	rec, _ = store.FindByKey("PROJ-1")
	if rec.Fields().Summary != "Req" {
		t.Errorf("Summary = %q after re-import", rec.Fields().Summary)
	}
	tc, _ := store.FindByKey("PROJ-2")
	steps := tc.(*models.TestCase).Steps
	if len(steps) != 1 || steps[0].Action != "open page" {
		t.Errorf("steps after re-import = %+v", steps)
	}
}

func TestExcelImportMissingFile(t *testing.T) {
	r, _ := excelRouter(t)
	w := doJSON(r, http.MethodPost, "/api/excel/import", map[string]any{
		"path": filepath.Join(t.TempDir(), "nope.xlsx"),
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d", w.Code)
	}
}

func TestExcelImportCreatesUnknownRows(t *testing.T) {
	r, store := excelRouter(t)
	path := filepath.Join(t.TempDir(), "fresh.xlsx")

	store.Create(models.KindDefect, map[string]any{"issue_key": "PROJ-9", "summary": "Crash"})
	w := doJSON(r, http.MethodPost, "/api/excel/export", map[string]any{"path": path})
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}

	// import into an empty store: the row is unknown there and must be created
	r2, store2 := excelRouter(t)
	w = doJSON(r2, http.MethodPost, "/api/excel/import", map[string]any{"path": path})
	if w.Code != http.StatusOK {
		t.Fatalf("import status = %d, body = %s", w.Code, w.Body.String())
	}

	rec, _ := store2.FindByKey("PROJ-9")
	if rec == nil || rec.Kind() != models.KindDefect {
		t.Fatalf("imported record = %v", rec)
	}
	if rec.Fields().SyncStatus != models.SyncDirty {
		t.Errorf("imported rows are local edits and must be dirty, got %q", rec.Fields().SyncStatus)
	}
}

func TestGroupSteps(t *testing.T) {
	groups := groupSteps([]map[string]string{
		{"issue_key": "PROJ-2", "preconditions": "logged out", "action": "open", "expected": "shown"},
		{"issue_key": "PROJ-2", "action": "submit", "data": "user/pass", "expected": "dashboard"},
		{"action": "orphan row without a key"},
	})

	if len(groups) != 1 {
		t.Fatalf("len(groups) = %d", len(groups))
	}
	g := groups["PROJ-2"]
	if g.preconditions != "logged out" || len(g.rows) != 2 {
		t.Errorf("group = %+v", g)
	}
	if g.rows[1].Data != "user/pass" {
		t.Errorf("rows = %+v", g.rows)
	}
}
