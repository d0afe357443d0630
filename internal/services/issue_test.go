package services

import (
	"testing"

	"github.com/noh03/rtmsync/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *IssueService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewIssueService(db)
}

func TestCreateFiltersUnknownFields(t *testing.T) {
	store := newTestStore(t)

	rec, err := store.Create(models.KindRequirement, map[string]any{
		"summary":      "Login requirement",
		"fix_version":  "1.0",
		"bogus_column": "never stored",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(rec.Fields().ID, models.KindRequirement)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	req := got.(*models.Requirement)
	if req.Summary != "Login requirement" || req.FixVersion != "1.0" {
		t.Errorf("stored fields = %q / %q", req.Summary, req.FixVersion)
	}
	if req.CustomFields != nil {
		if _, ok := req.CustomFields["bogus_column"]; ok {
			t.Error("unknown field leaked into custom_fields")
		}
	}
}

func TestCreateMintsPlaceholderKeys(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Create(models.KindRequirement, map[string]any{"summary": "a"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := store.Create(models.KindTestCase, map[string]any{"summary": "b"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if first.Fields().IssueKey != "NEW-1" {
		t.Errorf("first key = %q, want NEW-1", first.Fields().IssueKey)
	}
	if second.Fields().IssueKey != "NEW-2" {
		t.Errorf("second key = %q, want NEW-2", second.Fields().IssueKey)
	}
	if first.Fields().SyncStatus != models.SyncDirty {
		t.Errorf("new local issue should start dirty, got %q", first.Fields().SyncStatus)
	}
}

func TestCreateRejectsDuplicateKeyAcrossKinds(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Create(models.KindRequirement, map[string]any{"issue_key": "PROJ-1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	// same key in a different table must still be rejected
	if _, err := store.Create(models.KindDefect, map[string]any{"issue_key": "PROJ-1"}); err == nil {
		t.Fatal("duplicate key across kinds was accepted")
	}
}

func TestUpdateMarksDirtyAndIgnoresMissing(t *testing.T) {
	store := newTestStore(t)

	rec, _ := store.Create(models.KindRequirement, map[string]any{
		"issue_key":   "PROJ-2",
		"summary":     "before",
		"sync_status": models.SyncClean,
	})

	if err := store.Update(rec.Fields().ID, models.KindRequirement, map[string]any{"summary": "after"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := store.Get(rec.Fields().ID, models.KindRequirement)
	if got.Fields().Summary != "after" {
		t.Errorf("Summary = %q", got.Fields().Summary)
	}
	if got.Fields().SyncStatus != models.SyncDirty {
		t.Errorf("edit must flip record to dirty, got %q", got.Fields().SyncStatus)
	}

	// missing id is a no-op, not an error
	if err := store.Update(9999, models.KindRequirement, map[string]any{"summary": "x"}); err != nil {
		t.Errorf("update of missing id: %v", err)
	}
}

func TestDeleteMissingIsNoop(t *testing.T) {
	store := newTestStore(t)
	if err := store.Delete(12345, models.KindTestPlan); err != nil {
		t.Errorf("delete of missing id: %v", err)
	}
}

func TestListAllKindFallback(t *testing.T) {
	store := newTestStore(t)

	// rows persisted with a blank issue_type (legacy data)
	store.db.Create(&models.Requirement{IssueFields: models.IssueFields{IssueKey: "A-1"}})
	store.db.Create(&models.TestCase{IssueFields: models.IssueFields{IssueKey: "A-2"}})
	store.db.Create(&models.TestPlan{IssueFields: models.IssueFields{IssueKey: "A-3"}})

	all, err := store.ListAll()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	types := map[string]string{}
	for _, rec := range all {
		types[rec.Fields().IssueKey] = rec.Fields().IssueType
	}
	if types["A-1"] != "Requirement" {
		t.Errorf("requirement fallback = %q", types["A-1"])
	}
	if types["A-2"] != "Test Case" {
		t.Errorf("test case fallback = %q", types["A-2"])
	}
	// the quirky legacy rule: every non-test-case table falls back to Requirement
	if types["A-3"] != "Requirement" {
		t.Errorf("test plan fallback = %q", types["A-3"])
	}
}

func TestLinkDirections(t *testing.T) {
	store := newTestStore(t)

	if err := store.AddLink("PROJ-1", "PROJ-2", "tests"); err != nil {
		t.Fatalf("add link: %v", err)
	}

	out, err := store.Links("PROJ-1")
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	if len(out) != 1 || out[0].OtherKey != "PROJ-2" || out[0].Direction != models.DirectionOutward {
		t.Errorf("links from source = %+v", out)
	}

	in, _ := store.Links("PROJ-2")
	if len(in) != 1 || in[0].OtherKey != "PROJ-1" || in[0].Direction != models.DirectionInward {
		t.Errorf("links from target = %+v", in)
	}
}

func TestAddLinkAllowsDuplicates(t *testing.T) {
	store := newTestStore(t)
	store.AddLink("A", "B", "tests")
	store.AddLink("A", "B", "tests")

	links, _ := store.Links("A")
	if len(links) != 2 {
		t.Errorf("len(links) = %d, append-only store must keep duplicates", len(links))
	}
}

func TestRenameKeyRewritesLinks(t *testing.T) {
	store := newTestStore(t)

	rec, _ := store.Create(models.KindTestCase, map[string]any{"summary": "Login flow"})
	oldKey := rec.Fields().IssueKey
	store.AddLink(oldKey, "PROJ-1", "tests")
	store.AddLink("PROJ-9", oldKey, "blocks")

	if err := store.RenameKey(models.KindTestCase, oldKey, "PROJ-88"); err != nil {
		t.Fatalf("rename: %v", err)
	}

	if found, _ := store.FindByKey(oldKey); found != nil {
		t.Errorf("old key %s still present", oldKey)
	}
	renamed, _ := store.FindByKey("PROJ-88")
	if renamed == nil {
		t.Fatal("renamed record not found")
	}

	links, _ := store.Links("PROJ-88")
	if len(links) != 2 {
		t.Fatalf("len(links) = %d after rename", len(links))
	}
	for _, link := range links {
		if link.OtherKey == oldKey {
			t.Errorf("link still references %s", oldKey)
		}
	}
}

func TestRenameKeyUnknownKeyFails(t *testing.T) {
	store := newTestStore(t)
	store.AddLink("NEW-1", "PROJ-1", "tests")

	// wrong table for the key: the rename must fail and leave the links alone
	if err := store.RenameKey(models.KindDefect, "NEW-1", "PROJ-99"); err == nil {
		t.Fatal("rename without an issue row should fail")
	}
	links, _ := store.Links("NEW-1")
	if len(links) != 1 {
		t.Errorf("links rewritten despite failed rename: %+v", links)
	}
	if dangling, _ := store.Links("PROJ-99"); len(dangling) != 0 {
		t.Errorf("dangling links on %q: %+v", "PROJ-99", dangling)
	}
}

func TestMarkCleanUnknownKeyFails(t *testing.T) {
	store := newTestStore(t)
	if err := store.MarkClean(models.KindRequirement, "PROJ-404"); err == nil {
		t.Error("marking a missing record clean should fail, not report success")
	}
}

func TestUpsertFromRemoteIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	fields := map[string]any{"summary": "Req 1", "issue_type": "Requirement", "status": "Open"}
	for i := 0; i < 2; i++ {
		if err := store.UpsertFromRemote(models.KindRequirement, "PROJ-1", fields); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	all, _ := store.ListAll()
	if len(all) != 1 {
		t.Fatalf("len(all) = %d, upsert must not duplicate", len(all))
	}
	f := all[0].Fields()
	if f.SyncStatus != models.SyncClean || f.LastSyncedAt == nil {
		t.Errorf("pulled record must be clean with last_synced_at set, got %q", f.SyncStatus)
	}
}

func TestUpsertFromRemoteOverwritesLocalEdits(t *testing.T) {
	store := newTestStore(t)

	store.UpsertFromRemote(models.KindRequirement, "PROJ-1", map[string]any{"summary": "server"})
	rec, _ := store.FindByKey("PROJ-1")
	store.Update(rec.Fields().ID, models.KindRequirement, map[string]any{"summary": "local edit"})

	// pull is authoritative for synced columns
	store.UpsertFromRemote(models.KindRequirement, "PROJ-1", map[string]any{"summary": "server again"})
	rec, _ = store.FindByKey("PROJ-1")
	if rec.Fields().Summary != "server again" {
		t.Errorf("Summary = %q, pull must win", rec.Fields().Summary)
	}
	if rec.Fields().SyncStatus != models.SyncClean {
		t.Errorf("pull must force clean, got %q", rec.Fields().SyncStatus)
	}
}
