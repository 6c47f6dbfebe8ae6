package http

import (
	"net/http"

	"propgen/domain/dto"
	"propgen/usecase"

	"github.com/gin-gonic/gin"
)

type IContentHandler interface {
	SocialContent(c *gin.Context)
	GenerateAll(c *gin.Context)
	UpdateCaptions(c *gin.Context)
}

type ContentHandler struct {
	content usecase.IContentUsecase
}

func NewContentHandler(content usecase.IContentUsecase) IContentHandler {
	return &ContentHandler{content: content}
}

// SocialContent generates one caption for one platform without touching any property
func (h *ContentHandler) SocialContent(c *gin.Context) {
	if _, ok := requireCaller(c); !ok {
		return
	}
	var req dto.SocialContentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	text, err := h.content.GenerateSocialContent(c.Request.Context(), req.Platform, req.PropertyData)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SocialContentRes{GeneratedContent: text})
}

func (h *ContentHandler) GenerateAll(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	out, err := h.content.GenerateAll(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{Success: true, Data: dto.GenerateContentRes{
		Captions: out.Captions,
		Hashtags: out.Hashtags,
		Fallback: out.Fallback,
	}})
}

func (h *ContentHandler) UpdateCaptions(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateCaptionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	property, err := h.content.UpdateCaptions(c.Request.Context(), userID, c.Param("id"), req.Captions, req.Hashtags)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{Success: true, Data: property})
}
