package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/noh03/rtmsync/internal/excel"
	"github.com/noh03/rtmsync/internal/models"
	"github.com/noh03/rtmsync/internal/services"
	"github.com/noh03/rtmsync/pkg/response"
	"gorm.io/gorm"
)

type ExcelHandler struct {
	service *services.IssueService
}

func NewExcelHandler(db *gorm.DB) *ExcelHandler {
	return &ExcelHandler{service: services.NewIssueService(db)}
}

type excelRequest struct {
	Path string `json:"path" binding:"required"`
}

// Export writes the whole store to a two-sheet workbook at the given path.
func (h *ExcelHandler) Export(c *gin.Context) {
	var req excelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	records, err := h.service.ListAll()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	issues, steps := tabulate(records)
	if err := excel.Export(issues, steps, req.Path); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"path": req.Path, "issues": len(issues), "steps": len(steps)})
}

// Import reads a workbook back into the store: rows with a known key update
// the existing record, the rest are created (dirty, as any local edit).
func (h *ExcelHandler) Import(c *gin.Context) {
	var req excelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	wb, err := excel.Import(req.Path)
	if errors.Is(err, excel.ErrFileNotFound) {
		response.Error(c, response.NewNotFound(err.Error()))
		return
	}
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}

	imported, err := h.apply(wb)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"imported": imported})
}

func (h *ExcelHandler) apply(wb *excel.Workbook) (int, error) {
	imported := 0
	for _, row := range wb.Issues {
		fields := make(map[string]any, len(row))
		for name, value := range row {
			fields[name] = value
		}
		key := row["issue_key"]

		if key != "" {
			existing, err := h.service.FindByKey(key)
			if err != nil {
				return imported, err
			}
			if existing != nil {
				if err := h.service.Update(existing.Fields().ID, existing.Kind(), fields); err != nil {
					return imported, err
				}
				imported++
				continue
			}
		}

		kind := models.KindFromLabel(row["issue_type"])
		if _, err := h.service.Create(kind, fields); err != nil {
			return imported, err
		}
		imported++
	}

	for key, steps := range groupSteps(wb.Steps) {
		rec, err := h.service.FindByKey(key)
		if err != nil {
			return imported, err
		}
		if rec == nil || rec.Kind() != models.KindTestCase {
			continue
		}
		fields := map[string]any{"steps": steps.rows}
		if steps.preconditions != "" {
			fields["preconditions"] = steps.preconditions
		}
		if err := h.service.Update(rec.Fields().ID, rec.Kind(), fields); err != nil {
			return imported, err
		}
	}
	return imported, nil
}

type stepGroup struct {
	preconditions string
	rows          []models.TestStep
}

func groupSteps(rows []map[string]string) map[string]*stepGroup {
	groups := map[string]*stepGroup{}
	for _, row := range rows {
		key := row["issue_key"]
		if key == "" {
			continue
		}
		g := groups[key]
		if g == nil {
			g = &stepGroup{}
			groups[key] = g
		}
		if p := row["preconditions"]; p != "" {
			g.preconditions = p
		}
		g.rows = append(g.rows, models.TestStep{
			Action:   row["action"],
			Data:     row["data"],
			Expected: row["expected"],
		})
	}
	return groups
}

// tabulate flattens records into the Issues sheet rows and the Steps sheet
// rows (one row per test case step).
func tabulate(records []models.Record) (issues, steps []map[string]string) {
	for _, rec := range records {
		f := rec.Fields()
		issues = append(issues, map[string]string{
			"issue_key":       f.IssueKey,
			"issue_type":      f.IssueType,
			"summary":         f.Summary,
			"description":     f.Description,
			"status":          f.Status,
			"priority":        f.Priority,
			"assignee":        f.Assignee,
			"reporter":        f.Reporter,
			"parent_key":      f.ParentKey,
			"folder":          f.Folder,
			"labels":          f.Labels,
			"rtm_environment": f.RTMEnvironment,
			"security_level":  f.SecurityLevel,
			"affects_version": f.AffectsVersion,
			"sync_status":     f.SyncStatus,
		})

		tc, ok := rec.(*models.TestCase)
		if !ok {
			continue
		}
		for i, step := range tc.Steps {
			steps = append(steps, map[string]string{
				"issue_key":     f.IssueKey,
				"preconditions": tc.Preconditions,
				"order_no":      strconv.Itoa(i + 1),
				"action":        step.Action,
				"data":          step.Data,
				"expected":      step.Expected,
			})
		}
	}
	return issues, steps
}
