package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coursebot/service"
	"coursebot/types"
	"coursebot/utils"
)

type StatusHandler struct {
	documentService *service.DocumentService
	ragService      *service.RAGService
}

func NewStatusHandler(documentService *service.DocumentService, ragService *service.RAGService) *StatusHandler {
	return &StatusHandler{
		documentService: documentService,
		ragService:      ragService,
	}
}

func (h *StatusHandler) HandleStatus(c *gin.Context) {
	records, err := h.documentService.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.StatusResponse{
			BaseDocumentCount: h.ragService.BaseDocumentCount(),
			UploadedDocuments: len(records),
			StorageUsed:       utils.FormatFileSize(h.documentService.StorageUsed()),
		},
	})
}
