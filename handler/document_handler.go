package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursebot/service"
	"coursebot/types"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	ragService      *service.RAGService
}

func NewDocumentHandler(documentService *service.DocumentService, ragService *service.RAGService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		ragService:      ragService,
	}
}

// HandleList returns all uploaded documents, newest first.
func (h *DocumentHandler) HandleList(c *gin.Context) {
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
		Data:   records,
	})
}

// HandleDelete removes a document's stored file and metadata record, then
// drops its chunks from the user index. A vector removal failure after the
// file is gone is logged rather than surfaced; the document itself is
// already deleted.
func (h *DocumentHandler) HandleDelete(c *gin.Context) {
	fileID := c.Param("file_id")
	record, err := h.documentService.Get(fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "Document not found",
		})
		return
	}

	if err := h.documentService.Delete(fileID); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			c.JSON(http.StatusNotFound, types.DataResponse{
				Status:  "error",
				Message: "Document not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}

	removed, err := h.ragService.RemoveUserDocument(c.Request.Context(), record.OriginalFilename)
	if err != nil {
		log.Printf("failed to remove chunks for %s from user index: %v", record.OriginalFilename, err)
	}

	c.JSON(http.StatusOK, types.DataResponse{
		Status:  "success",
		Message: "Document deleted",
		Data: gin.H{
			"file_id":        fileID,
			"chunks_removed": removed,
		},
	})
}

// HandleDownload streams the stored PDF for a document record.
func (h *DocumentHandler) HandleDownload(c *gin.Context) {
	fileID := c.Param("file_id")
	record, err := h.documentService.Get(fileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	if record == nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "Document not found",
		})
		return
	}
	c.FileAttachment(record.StoragePath, record.OriginalFilename)
}
