package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/noh03/rtmsync/internal/models"
	"github.com/noh03/rtmsync/internal/services"
	"github.com/noh03/rtmsync/pkg/response"
	"gorm.io/gorm"
)

type IssueHandler struct {
	service *services.IssueService
}

func NewIssueHandler(db *gorm.DB) *IssueHandler {
	return &IssueHandler{service: services.NewIssueService(db)}
}

func (h *IssueHandler) List(c *gin.Context) {
	issues, err := h.service.ListAll()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, issues)
}

// Create accepts a loose field payload; issue_type selects the table and
// unknown fields are dropped by the store.
func (h *IssueHandler) Create(c *gin.Context) {
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	kind := models.KindFromLabel(stringAt(fields, "issue_type"))
	rec, err := h.service.Create(kind, fields)
	if errors.Is(err, services.ErrDuplicateKey) {
		response.Error(c, response.NewConflict(err.Error()))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, rec)
}

func (h *IssueHandler) Get(c *gin.Context) {
	id, kind, ok := h.idAndKind(c)
	if !ok {
		return
	}
	rec, err := h.service.Get(id, kind)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	if rec == nil {
		response.Error(c, response.NewNotFound("issue not found"))
		return
	}
	response.Success(c, rec)
}

func (h *IssueHandler) Update(c *gin.Context) {
	id, kind, ok := h.idAndKind(c)
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.service.Update(id, kind, fields); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "updated"})
}

func (h *IssueHandler) Delete(c *gin.Context) {
	id, kind, ok := h.idAndKind(c)
	if !ok {
		return
	}
	if err := h.service.Delete(id, kind); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"message": "deleted"})
}

// idAndKind reads the record id from the path and the table from the
// issue_type query parameter (ids are only unique per table).
func (h *IssueHandler) idAndKind(c *gin.Context) (uint, models.Kind, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return 0, "", false
	}
	return uint(id), models.KindFromLabel(c.Query("issue_type")), true
}

func stringAt(fields map[string]any, name string) string {
	s, _ := fields[name].(string)
	return s
}
