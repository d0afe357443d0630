package models

import (
	"strings"
	"time"
)

// Kind identifies one of the five local issue tables. The set is closed;
// anything the remote sends that does not match falls back to KindRequirement.
type Kind string

const (
	KindRequirement   Kind = "Requirement"
	KindTestCase      Kind = "Test Case"
	KindTestPlan      Kind = "Test Plan"
	KindTestExecution Kind = "Test Execution"
	KindDefect        Kind = "Defect"
)

// Sync states of an issue. dirty -> clean only via a successful push or a
// pull-driven upsert; any local mutation flips the record back to dirty.
const (
	SyncClean = "clean"
	SyncDirty = "dirty"
)

// PlaceholderPrefix marks locally minted issue keys that the server has not
// confirmed yet. Such keys must never be sent to a remote-facing update.
const PlaceholderPrefix = "NEW-"

func IsPlaceholderKey(key string) bool {
	return strings.HasPrefix(key, PlaceholderPrefix)
}

// Kinds returns every issue kind in stable iteration order.
func Kinds() []Kind {
	return []Kind{KindRequirement, KindTestCase, KindTestPlan, KindTestExecution, KindDefect}
}

// KindFromLabel maps a raw remote type label to a local kind by
// case-insensitive substring match. Precedence and fallback follow the RTM
// tree payloads: absent or unrecognized labels are treated as requirements.
func KindFromLabel(raw string) Kind {
	t := strings.ToLower(raw)
	switch {
	case strings.Contains(t, "requirement"):
		return KindRequirement
	case strings.Contains(t, "test case"), strings.Contains(t, "test_case"):
		return KindTestCase
	case strings.Contains(t, "test plan"), strings.Contains(t, "test_plan"):
		return KindTestPlan
	case strings.Contains(t, "test execution"), strings.Contains(t, "test_execution"):
		return KindTestExecution
	case strings.Contains(t, "defect"), strings.Contains(t, "bug"):
		return KindDefect
	default:
		return KindRequirement
	}
}

// NewRecord returns an empty record of the given kind. This is the closed
// dispatch point between kind labels and table structs.
func NewRecord(k Kind) Record {
	switch k {
	case KindTestCase:
		return &TestCase{}
	case KindTestPlan:
		return &TestPlan{}
	case KindTestExecution:
		return &TestExecution{}
	case KindDefect:
		return &Defect{}
	default:
		return &Requirement{}
	}
}

// IssueFields holds the columns shared by all five issue tables.
type IssueFields struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	IssueKey    string `gorm:"size:50;uniqueIndex;not null" json:"issue_key"`
	Summary     string `gorm:"size:255" json:"summary"`
	Description string `gorm:"type:text" json:"description"`

	ProjectID int    `json:"project_id"`
	IssueType string `gorm:"size:50" json:"issue_type"`
	Status    string `gorm:"size:50" json:"status"`
	Priority  string `gorm:"size:50" json:"priority"`
	Assignee  string `gorm:"size:100" json:"assignee"`
	Reporter  string `gorm:"size:100" json:"reporter"`

	// Tree position: issue key of the nearest keyed ancestor, empty for roots.
	ParentKey string `gorm:"size:50;index" json:"parent_key"`
	Folder    string `gorm:"size:255" json:"folder"`

	SecurityLevel  string     `gorm:"size:50" json:"security_level"`
	RTMEnvironment string     `gorm:"size:100" json:"rtm_environment"`
	DueDate        *time.Time `json:"due_date"`
	Labels         string     `gorm:"size:255" json:"labels"`
	AffectsVersion string     `gorm:"size:50" json:"affects_version"`

	// Escape hatch for vendor fields outside the fixed column set.
	CustomFields map[string]any `gorm:"serializer:json" json:"custom_fields"`

	SyncStatus   string     `gorm:"size:10;default:dirty;index" json:"sync_status"`
	LastSyncedAt *time.Time `json:"last_synced_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record is implemented by every issue table struct. Apply sets a known field
// from a loosely-typed payload value and reports whether the field name was
// recognized; unknown names are dropped by the caller, never stored.
type Record interface {
	Fields() *IssueFields
	Kind() Kind
	Apply(field string, value any) bool
}

// applyCommon handles the shared column set. issue_key and id are deliberately
// not settable through payloads; key rewrites go through the store.
func (f *IssueFields) applyCommon(field string, value any) bool {
	switch field {
	case "summary":
		f.Summary = asString(value)
	case "description":
		f.Description = asString(value)
	case "project_id":
		f.ProjectID = asInt(value)
	case "issue_type":
		f.IssueType = asString(value)
	case "status":
		f.Status = asString(value)
	case "priority":
		f.Priority = asString(value)
	case "assignee":
		f.Assignee = asString(value)
	case "reporter":
		f.Reporter = asString(value)
	case "parent_key":
		f.ParentKey = asString(value)
	case "folder":
		f.Folder = asString(value)
	case "security_level":
		f.SecurityLevel = asString(value)
	case "rtm_environment":
		f.RTMEnvironment = asString(value)
	case "due_date":
		f.DueDate = asTime(value)
	case "labels":
		f.Labels = asString(value)
	case "affects_version":
		f.AffectsVersion = asString(value)
	case "custom_fields":
		if m, ok := value.(map[string]any); ok {
			f.CustomFields = m
		}
	case "sync_status":
		f.SyncStatus = asString(value)
	default:
		return false
	}
	return true
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return ""
	}
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// asTime accepts time values directly or RFC3339 / date-only strings, which is
// what JSON payloads and spreadsheet cells carry.
func asTime(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	case string:
		if t == "" {
			return nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return &parsed
			}
		}
	}
	return nil
}
