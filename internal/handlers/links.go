package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/noh03/rtmsync/internal/services"
	"github.com/noh03/rtmsync/pkg/response"
	"gorm.io/gorm"
)

type LinkHandler struct {
	service *services.IssueService
}

func NewLinkHandler(db *gorm.DB) *LinkHandler {
	return &LinkHandler{service: services.NewIssueService(db)}
}

type addLinkRequest struct {
	SourceKey string `json:"source_key" binding:"required"`
	TargetKey string `json:"target_key" binding:"required"`
	LinkType  string `json:"link_type"`
}

func (h *LinkHandler) Add(c *gin.Context) {
	var req addLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := h.service.AddLink(req.SourceKey, req.TargetKey, req.LinkType); err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Created(c, gin.H{"message": "linked"})
}

func (h *LinkHandler) List(c *gin.Context) {
	links, err := h.service.Links(c.Param("key"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, links)
}
