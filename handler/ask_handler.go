package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"coursebot/service"
	"coursebot/types"
)

type AskHandler struct {
	ragService *service.RAGService
}

func NewAskHandler(ragService *service.RAGService) *AskHandler {
	return &AskHandler{
		ragService: ragService,
	}
}

func (h *AskHandler) HandleAsk(c *gin.Context) {
	var req types.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Invalid request",
		})
		return
	}
	if req.Question == "" {
		c.JSON(http.StatusBadRequest, types.DataResponse{
			Status:  "error",
			Message: "Question must not be empty",
		})
		return
	}

	answer, sources, err := h.ragService.Ask(c.Request.Context(), req.Question, req.TopK)
	if err != nil {
		c.JSON(http.StatusInternalServerError, types.DataResponse{
			Status:  "error",
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, types.DataResponse{
		Status: "success",
		Data: types.AskResponse{
			Answer:  answer,
			Sources: sources,
		},
	})
}
