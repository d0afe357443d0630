package services

import (
	"fmt"

	"github.com/noh03/rtmsync/internal/models"
	"github.com/noh03/rtmsync/pkg/logger"
)

// RemoteAPI is the slice of the JIRA client the sync engine needs. Keeping it
// an interface lets tests substitute a double.
type RemoteAPI interface {
	GetTree(projectID int) (any, error)
	CreateIssue(projectID int, issueTypeName, summary, description string, extra map[string]any) (map[string]any, error)
	UpdateIssue(issueKey string, fields map[string]any) (map[string]any, error)
}

// SyncService reconciles the remote RTM tree against the local store.
// Pull is all-or-nothing and authoritative for the synced columns; push is
// best-effort per issue.
type SyncService struct {
	store *IssueService
	api   RemoteAPI
}

func NewSyncService(store *IssueService, api RemoteAPI) *SyncService {
	return &SyncService{store: store, api: api}
}

// PullTree fetches the remote tree and upserts every keyed node. The payload
// may be a bare list of roots, an object carrying roots (or children), or a
// single root node. Any failure aborts the whole pull.
func (s *SyncService) PullTree(projectID int) error {
	tree, err := s.api.GetTree(projectID)
	if err != nil {
		return err
	}

	switch t := tree.(type) {
	case []any:
		if err := s.syncNodes(t, ""); err != nil {
			return err
		}
	case map[string]any:
		roots, ok := t["roots"].([]any)
		if !ok {
			roots, ok = t["children"].([]any)
		}
		if ok {
			if err := s.syncNodes(roots, ""); err != nil {
				return err
			}
		} else if err := s.syncNode(t, ""); err != nil {
			return err
		}
	case nil:
		// an empty tree is a valid answer
	default:
		return fmt.Errorf("sync: unexpected tree payload %T", tree)
	}

	logger.Info().Int("project_id", projectID).Msg("tree pull finished")
	return nil
}

func (s *SyncService) syncNodes(nodes []any, parentKey string) error {
	for _, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if err := s.syncNode(node, parentKey); err != nil {
			return err
		}
	}
	return nil
}

// syncNode upserts one tree node and recurses into its children, depth-first
// pre-order. Keyless nodes are structural (folders/roots): they are not
// persisted and pass the incoming parent key through to their children.
func (s *SyncService) syncNode(node map[string]any, parentKey string) error {
	name := stringField(node, "name", "summary")
	issueKey := stringField(node, "issueKey", "key")
	status := stringField(node, "status")
	rawType := stringField(node, "issueType", "type")
	kind := models.KindFromLabel(rawType)

	if issueKey != "" {
		fields := map[string]any{
			"summary":    name,
			"issue_type": string(kind),
			"status":     status,
			"parent_key": parentKey,
		}
		if err := s.store.UpsertFromRemote(kind, issueKey, fields); err != nil {
			return err
		}
	}

	children, _ := node["children"].([]any)
	childParent := issueKey
	if childParent == "" {
		childParent = parentKey
	}
	return s.syncNodes(children, childParent)
}

func stringField(node map[string]any, names ...string) string {
	for _, name := range names {
		if v, ok := node[name].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// PushDirty sends every dirty issue to the server, one at a time.
// Placeholder-keyed records are created remotely and rekeyed with the
// server-assigned key (links included); records with a real key get a
// summary/description update. A failing issue is logged, left dirty and
// skipped; the loop continues. The returned count covers issues that fully
// succeeded.
func (s *SyncService) PushDirty(projectID int) (int, error) {
	dirty, err := s.store.DirtyIssues()
	if err != nil {
		return 0, err
	}

	pushed := 0
	for _, rec := range dirty {
		f := rec.Fields()
		if err := s.pushOne(projectID, rec); err != nil {
			logger.Warn().Err(err).Str("issue_key", f.IssueKey).Msg("push skipped")
			continue
		}
		pushed++
	}

	logger.Info().Int("pushed", pushed).Int("dirty", len(dirty)).Msg("push finished")
	return pushed, nil
}

func (s *SyncService) pushOne(projectID int, rec models.Record) error {
	f := rec.Fields()
	// The table the record came from, not the mutable issue_type label; the
	// two can disagree after a local relabel.
	kind := rec.Kind()

	if models.IsPlaceholderKey(f.IssueKey) {
		created, err := s.api.CreateIssue(projectID, f.IssueType, f.Summary, f.Description, nil)
		if err != nil {
			return err
		}
		newKey, _ := created["key"].(string)
		if newKey == "" {
			return fmt.Errorf("sync: create response for %s carried no key", f.IssueKey)
		}
		if err := s.store.RenameKey(kind, f.IssueKey, newKey); err != nil {
			return err
		}
		return s.store.MarkClean(kind, newKey)
	}

	_, err := s.api.UpdateIssue(f.IssueKey, map[string]any{
		"summary":     f.Summary,
		"description": f.Description,
	})
	if err != nil {
		return err
	}
	return s.store.MarkClean(kind, f.IssueKey)
}
