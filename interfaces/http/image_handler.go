package http

import (
	"context"
	"io"
	"net/http"
	"strings"

	"propgen/domain/dto"
	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/infrastructure/storage"
	"propgen/usecase"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type IImageHandler interface {
	Generate(c *gin.Context)
	Serve(c *gin.Context)
}

// ObjectReader opens stored images for the public /images route
type ObjectReader interface {
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
}

type ImageHandler struct {
	images  usecase.IImageUsecase
	objects ObjectReader
}

func NewImageHandler(images usecase.IImageUsecase, objects ObjectReader) IImageHandler {
	return &ImageHandler{images: images, objects: objects}
}

func (h *ImageHandler) Generate(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}
	var req dto.GenerateImagesReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, err)
			return
		}
	}
	res, err := h.images.GenerateImages(c.Request.Context(), userID, c.Param("id"), usecase.ImageOptions{
		Composer:         model.ComposerKind(req.Composer),
		TemplateID:       req.TemplateID,
		TemplateImageURL: req.TemplateImageURL,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Res{Success: true, Data: dto.GenerateImagesRes{Images: res.Images, Failed: res.Failed}})
}

// Serve streams an uploaded image when the bucket has no public endpoint of its own
func (h *ImageHandler) Serve(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" || strings.Contains(key, "..") {
		respondError(c, domainerrors.ErrNotFound)
		return
	}
	rc, contentType, err := h.objects.Open(c.Request.Context(), key)
	if errors.Is(err, storage.ErrObjectNotFound) {
		respondError(c, domainerrors.ErrNotFound)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	defer rc.Close()
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
