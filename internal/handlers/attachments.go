package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/noh03/rtmsync/internal/attachments"
	"github.com/noh03/rtmsync/pkg/response"
)

type AttachmentHandler struct {
	store *attachments.Store
}

func NewAttachmentHandler(store *attachments.Store) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

func (h *AttachmentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file field")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	defer src.Close()

	stored, err := h.store.Save(c.Param("key"), file.Filename, src)
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Created(c, gin.H{"stored": stored})
}

func (h *AttachmentHandler) List(c *gin.Context) {
	names, err := h.store.List(c.Param("key"))
	if err != nil {
		response.ServerError(c, err.Error())
		return
	}
	response.Success(c, names)
}

func (h *AttachmentHandler) Download(c *gin.Context) {
	c.FileAttachment(h.store.Path(c.Param("key"), c.Param("name")), c.Param("name"))
}
