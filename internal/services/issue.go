package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noh03/rtmsync/internal/models"
	"gorm.io/gorm"
)

// IssueService is the local store: five issue tables plus the link table.
// Every method is one short-lived unit of work; write failures roll back and
// propagate, they are never swallowed.
type IssueService struct {
	db *gorm.DB
}

func NewIssueService(db *gorm.DB) *IssueService {
	return &IssueService{db: db}
}

var ErrDuplicateKey = errors.New("issue key already exists")

// Create stores a new issue of the given kind. Payload fields outside the
// kind's column set are dropped, never stored. Records start dirty unless the
// payload says otherwise, and get a NEW-<n> placeholder key when none is given.
func (s *IssueService) Create(kind models.Kind, fields map[string]any) (models.Record, error) {
	rec := models.NewRecord(kind)
	for name, value := range fields {
		rec.Apply(name, value)
	}
	f := rec.Fields()
	if f.IssueType == "" {
		f.IssueType = string(kind)
	}
	if _, ok := fields["sync_status"]; !ok {
		f.SyncStatus = models.SyncDirty
	}
	if key, _ := fields["issue_key"].(string); key != "" {
		f.IssueKey = key
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if f.IssueKey == "" {
			key, err := nextPlaceholderKey(tx)
			if err != nil {
				return err
			}
			f.IssueKey = key
		} else if existing, err := findByKey(tx, f.IssueKey); err != nil {
			return err
		} else if existing != nil {
			return fmt.Errorf("%w: %s", ErrDuplicateKey, f.IssueKey)
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update applies known payload fields to the record and marks it dirty.
// A missing id is a no-op, matching the store contract.
func (s *IssueService) Update(id uint, kind models.Kind, fields map[string]any) error {
	rec := models.NewRecord(kind)
	err := s.db.First(rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for name, value := range fields {
		rec.Apply(name, value)
	}
	rec.Fields().SyncStatus = models.SyncDirty
	return s.db.Save(rec).Error
}

// Delete removes the record if present; deletion is local-only.
func (s *IssueService) Delete(id uint, kind models.Kind) error {
	return s.db.Delete(models.NewRecord(kind), id).Error
}

func (s *IssueService) Get(id uint, kind models.Kind) (models.Record, error) {
	rec := models.NewRecord(kind)
	err := s.db.First(rec, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// ListAll returns every issue across all kinds, each tagged with its kind.
// Rows with a blank issue_type default to Requirement, except rows from the
// test case table which default to Test Case (compatibility rule).
func (s *IssueService) ListAll() ([]models.Record, error) {
	return s.collect(false)
}

// DirtyIssues returns every issue awaiting a push.
func (s *IssueService) DirtyIssues() ([]models.Record, error) {
	return s.collect(true)
}

func (s *IssueService) collect(dirtyOnly bool) ([]models.Record, error) {
	out := make([]models.Record, 0)

	query := func() *gorm.DB {
		q := s.db
		if dirtyOnly {
			q = q.Where("sync_status = ?", models.SyncDirty)
		}
		return q
	}

	var reqs []models.Requirement
	if err := query().Find(&reqs).Error; err != nil {
		return nil, err
	}
	for i := range reqs {
		out = append(out, tagged(&reqs[i]))
	}

	var cases []models.TestCase
	if err := query().Find(&cases).Error; err != nil {
		return nil, err
	}
	for i := range cases {
		out = append(out, tagged(&cases[i]))
	}

	var plans []models.TestPlan
	if err := query().Find(&plans).Error; err != nil {
		return nil, err
	}
	for i := range plans {
		out = append(out, tagged(&plans[i]))
	}

	var execs []models.TestExecution
	if err := query().Find(&execs).Error; err != nil {
		return nil, err
	}
	for i := range execs {
		out = append(out, tagged(&execs[i]))
	}

	var defects []models.Defect
	if err := query().Find(&defects).Error; err != nil {
		return nil, err
	}
	for i := range defects {
		out = append(out, tagged(&defects[i]))
	}

	return out, nil
}

func tagged(rec models.Record) models.Record {
	f := rec.Fields()
	if f.IssueType == "" {
		if rec.Kind() == models.KindTestCase {
			f.IssueType = string(models.KindTestCase)
		} else {
			f.IssueType = string(models.KindRequirement)
		}
	}
	return rec
}

// FindByKey looks the key up across all five tables; issue keys are unique
// store-wide, not per table.
func (s *IssueService) FindByKey(key string) (models.Record, error) {
	return findByKey(s.db, key)
}

func findByKey(tx *gorm.DB, key string) (models.Record, error) {
	for _, kind := range models.Kinds() {
		rec := models.NewRecord(kind)
		err := tx.Where("issue_key = ?", key).First(rec).Error
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// UpsertFromRemote applies remote-authoritative fields keyed by issue key:
// insert when the key is unseen, otherwise overwrite the synced columns of the
// existing record wherever it lives (pull wins over local edits on these
// columns). The record always ends up clean.
func (s *IssueService) UpsertFromRemote(kind models.Kind, key string, fields map[string]any) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		rec, err := findByKey(tx, key)
		if err != nil {
			return err
		}
		if rec == nil {
			rec = models.NewRecord(kind)
			rec.Fields().IssueKey = key
		}
		for name, value := range fields {
			rec.Apply(name, value)
		}
		now := time.Now().UTC()
		f := rec.Fields()
		f.SyncStatus = models.SyncClean
		f.LastSyncedAt = &now
		return tx.Save(rec).Error
	})
}

// MarkClean records a successful push acknowledgment. A key absent from the
// kind's table is an error: swallowing it would report a push as succeeded
// while the record stays dirty.
func (s *IssueService) MarkClean(kind models.Kind, key string) error {
	rec := models.NewRecord(kind)
	err := s.db.Where("issue_key = ?", key).First(rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("mark clean: no %s with key %s", kind, key)
	}
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	f := rec.Fields()
	f.SyncStatus = models.SyncClean
	f.LastSyncedAt = &now
	return s.db.Save(rec).Error
}

// RenameKey replaces a placeholder key with the server-assigned one, on the
// issue row and on both columns of the link table, in one transaction. The
// issue row must exist in the kind's table; rewriting links without it would
// leave them pointing at a key no local record carries.
func (s *IssueService) RenameKey(kind models.Kind, oldKey, newKey string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		rec := models.NewRecord(kind)
		err := tx.Where("issue_key = ?", oldKey).First(rec).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("rename key: no %s with key %s", kind, oldKey)
		}
		if err != nil {
			return err
		}
		rec.Fields().IssueKey = newKey
		if err := tx.Save(rec).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.IssueLink{}).
			Where("source_key = ?", oldKey).
			Update("source_key", newKey).Error; err != nil {
			return err
		}
		return tx.Model(&models.IssueLink{}).
			Where("target_key = ?", oldKey).
			Update("target_key", newKey).Error
	})
}

// AddLink appends a link. Duplicate (source, target, type) triples are allowed;
// the store mirrors whatever the user or the remote recorded.
func (s *IssueService) AddLink(sourceKey, targetKey, linkType string) error {
	link := models.IssueLink{SourceKey: sourceKey, TargetKey: targetKey, LinkType: linkType}
	return s.db.Create(&link).Error
}

// Links returns every link touching the key, from the key's point of view:
// Outward when the key is the source, Inward otherwise.
func (s *IssueService) Links(key string) ([]models.LinkView, error) {
	var links []models.IssueLink
	if err := s.db.Where("source_key = ? OR target_key = ?", key, key).Find(&links).Error; err != nil {
		return nil, err
	}
	views := make([]models.LinkView, 0, len(links))
	for _, link := range links {
		view := models.LinkView{ID: link.ID, LinkType: link.LinkType}
		if link.SourceKey == key {
			view.OtherKey = link.TargetKey
			view.Direction = models.DirectionOutward
		} else {
			view.OtherKey = link.SourceKey
			view.Direction = models.DirectionInward
		}
		views = append(views, view)
	}
	return views, nil
}

// nextPlaceholderKey mints NEW-<n> with n one past the highest placeholder
// number across all tables.
func nextPlaceholderKey(tx *gorm.DB) (string, error) {
	max := 0
	for _, kind := range models.Kinds() {
		var keys []string
		rec := models.NewRecord(kind)
		err := tx.Model(rec).
			Where("issue_key LIKE ?", models.PlaceholderPrefix+"%").
			Pluck("issue_key", &keys).Error
		if err != nil {
			return "", err
		}
		for _, key := range keys {
			if n, err := strconv.Atoi(strings.TrimPrefix(key, models.PlaceholderPrefix)); err == nil && n > max {
				max = n
			}
		}
	}
	return fmt.Sprintf("%s%d", models.PlaceholderPrefix, max+1), nil
}
