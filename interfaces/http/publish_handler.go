package http

import (
	"net/http"

	"propgen/domain/dto"
	"propgen/domain/model"
	"propgen/usecase"

	"github.com/gin-gonic/gin"
)

type IPublishHandler interface {
	Publish(c *gin.Context)
	History(c *gin.Context)
}

type PublishHandler struct {
	publish usecase.IPublishUsecase
}

func NewPublishHandler(publish usecase.IPublishUsecase) IPublishHandler {
	return &PublishHandler{publish: publish}
}

// Publish handles POST /api/publish/:platform
func (h *PublishHandler) Publish(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req dto.PublishReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	res, err := h.publish.Publish(c.Request.Context(), userID, c.Param("platform"), model.PublishInput{
		PropertyID:  req.PropertyID,
		ImageURLs:   req.ImageURLs,
		Caption:     req.Caption,
		Hashtags:    req.Hashtags,
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PublishRes{Success: true, PostID: res.PostID, URL: res.URL, UploadURL: res.UploadURL})
}

func (h *PublishHandler) History(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	list, err := h.publish.History(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []model.PublishAudit{}
	}
	c.JSON(http.StatusOK, dto.Res{Success: true, Data: list})
}
