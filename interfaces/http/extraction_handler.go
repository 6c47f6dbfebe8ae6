package http

import (
	"net/http"

	"propgen/domain/dto"
	"propgen/usecase"

	"github.com/gin-gonic/gin"
)

type IExtractionHandler interface {
	Extract(c *gin.Context)
}

type ExtractionHandler struct {
	extraction usecase.IExtractionUsecase
}

func NewExtractionHandler(extraction usecase.IExtractionUsecase) IExtractionHandler {
	return &ExtractionHandler{extraction: extraction}
}

func (h *ExtractionHandler) Extract(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req dto.ExtractReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	property, err := h.extraction.Extract(c.Request.Context(), userID, req.URL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{Success: true, Data: property})
}
