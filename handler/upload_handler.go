package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"coursebot/service"
	"coursebot/types"
)

type UploadHandler struct {
	batchService *service.BatchService
}

func NewUploadHandler(batchService *service.BatchService) *UploadHandler {
	return &UploadHandler{
		batchService: batchService,
	}
}

// HandleUpload accepts one or more PDF files in a multipart form and runs
// them through save -> index -> persist. Per-file failures are reported in
// the batch state; the request itself only fails on malformed input.
func (h *UploadHandler) HandleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid multipart form",
		})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "No files provided",
		})
		return
	}

	files := make([]service.BatchFile, 0, len(headers))
	for _, header := range headers {
		src, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: "Failed to read " + header.Filename,
			})
			return
		}
		content, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, types.DataResponse{
				Status:  "error",
				Message: "Failed to read " + header.Filename,
			})
			return
		}
		files = append(files, service.BatchFile{
			Name:         header.Filename,
			DeclaredType: header.Header.Get("Content-Type"),
			Content:      content,
		})
	}

	h.batchService.SetFiles(files)
	state, err := h.batchService.Process(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   state,
	})
}

// HandleRetry resets failed files of the current batch and reprocesses
// them under the same batch fingerprint.
func (h *UploadHandler) HandleRetry(c *gin.Context) {
	if h.batchService.State() == nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "No batch to retry",
		})
		return
	}
	h.batchService.ResetFailed()
	state, err := h.batchService.Process(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   state,
	})
}

// HandleBatchState returns the current batch snapshot.
func (h *UploadHandler) HandleBatchState(c *gin.Context) {
	state := h.batchService.State()
	if state == nil {
		c.JSON(http.StatusNotFound, types.DataResponse{
			Status:  "error",
			Message: "No batch in progress",
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data:   state,
	})
}
