package image

import (
	"context"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/troop127/portal/internal/handler"
	"github.com/troop127/portal/pkg/model"
)

func NewHandler(imageService imageService) Handler {
	return Handler{
		imageService: imageService,
	}
}

type Handler struct {
	imageService imageService
}

type imageService interface {
	Download(ctx context.Context, id uint, dst io.Writer, cb func(image *model.Image, contentLength int64)) error
}

// Download streams an image blob. The endpoint is public; image URLs are
// embedded in rendered event bodies.
func (h Handler) Download(c *gin.Context) {
	id, ok := handler.GetPathParameter(c, "id")
	if !ok {
		return
	}

	err := h.imageService.Download(c.Request.Context(), id, c.Writer, func(image *model.Image, contentLength int64) {
		c.Header("Content-Type", "image/"+image.Type)
		c.Header("Content-Length", strconv.FormatInt(contentLength, 10))
		c.Header("Cache-Control", "public, max-age=86400")
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
}
