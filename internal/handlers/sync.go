package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/noh03/rtmsync/internal/jira"
	"github.com/noh03/rtmsync/internal/services"
	"github.com/noh03/rtmsync/pkg/response"
	"gorm.io/gorm"
)

type SyncHandler struct {
	sync             *services.SyncService
	client           *jira.Client
	defaultProjectID int
}

func NewSyncHandler(db *gorm.DB, client *jira.Client, defaultProjectID int) *SyncHandler {
	store := services.NewIssueService(db)
	return &SyncHandler{
		sync:             services.NewSyncService(store, client),
		client:           client,
		defaultProjectID: defaultProjectID,
	}
}

type syncRequest struct {
	ProjectID int `json:"project_id"`
}

func (h *SyncHandler) projectID(c *gin.Context) int {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.ProjectID != 0 {
		return req.ProjectID
	}
	return h.defaultProjectID
}

// Pull mirrors the remote tree into the local store. All-or-nothing: the
// first failure aborts and surfaces.
func (h *SyncHandler) Pull(c *gin.Context) {
	projectID := h.projectID(c)
	if err := h.sync.PullTree(projectID); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"project_id": projectID})
}

// Push sends dirty issues to the server, best-effort per issue.
func (h *SyncHandler) Push(c *gin.Context) {
	projectID := h.projectID(c)
	pushed, err := h.sync.PushDirty(projectID)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, gin.H{"project_id": projectID, "pushed": pushed})
}

// Ping backs the view's "Test Connection" button.
func (h *SyncHandler) Ping(c *gin.Context) {
	response.Success(c, gin.H{"connected": h.client.Ping()})
}
