package http

import (
	"net/http"

	"propgen/domain/dto"
	"propgen/domain/model"
	"propgen/usecase"

	"github.com/gin-gonic/gin"
)

type IProfileHandler interface {
	GetProfile(c *gin.Context)
	UpdateProfile(c *gin.Context)
	ListProperties(c *gin.Context)
	GetProperty(c *gin.Context)
}

// ProfileHandler serves the dashboard: the caller's profile and their saved properties
type ProfileHandler struct {
	profiles   usecase.IProfileUsecase
	properties usecase.IPropertyUsecase
}

func NewProfileHandler(profiles usecase.IProfileUsecase, properties usecase.IPropertyUsecase) IProfileHandler {
	return &ProfileHandler{profiles: profiles, properties: properties}
}

func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	p, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{Success: true, Data: p})
}

func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, err)
		return
	}
	p, err := h.profiles.UpdateProfile(c.Request.Context(), userID, model.ProfileUpdate{
		DisplayName: req.DisplayName,
		Company:     req.Company,
		AvatarURL:   req.AvatarURL,
		LogoURL:     req.LogoURL,
		Language:    req.Language,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{Success: true, Data: p})
}

func (h *ProfileHandler) ListProperties(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req dto.ListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		respondError(c, err)
		return
	}
	list, err := h.properties.List(c.Request.Context(), userID, req.Limit, req.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{Success: true, Data: list})
}

func (h *ProfileHandler) GetProperty(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	p, err := h.properties.Get(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{Success: true, Data: p})
}
