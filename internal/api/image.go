package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
)

// multipartOverhead is allowed on top of the image limit for the form framing
const multipartOverhead = 64 << 10

// DefaultMaxImageBytes applies when no limit is configured
const DefaultMaxImageBytes = 5 << 20

// UploadImage stores the multipart "image" field as the recipe's photo,
// replacing any previous one. Accepts jpeg, png and webp.
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}

	limit := h.maxImageBytes
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			fail(c, apperrors.NewPayloadTooLargeError(limit))
			return
		}
		fail(c, apperrors.NewValidationError("multipart field \"image\" is required"))
		return
	}
	if header.Size > limit {
		fail(c, apperrors.NewPayloadTooLargeError(limit))
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, apperrors.NewBadRequestError("failed to read upload"))
		return
	}
	defer file.Close()

	sniff := make([]byte, 512)
	n, _ := file.Read(sniff)
	contentType := http.DetectContentType(sniff[:n])
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		fail(c, apperrors.NewBadRequestError("failed to read upload"))
		return
	}

	// a declared type must agree with the bytes
	if declared, _, err := mime.ParseMediaType(header.Header.Get("Content-Type")); err == nil && declared != "application/octet-stream" {
		if sniffed, _, _ := mime.ParseMediaType(contentType); declared != sniffed {
			fail(c, apperrors.NewValidationError(fmt.Sprintf("image content is %s, not the declared %s", sniffed, declared)))
			return
		}
	}

	recipe, err := h.recipeService.SetImage(c.Request.Context(), userID, id, contentType, file, header.Size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteImage(c *gin.Context) {
	userID, id, ok := userAndID(c)
	if !ok {
		return
	}

	recipe, err := h.recipeService.RemoveImage(c.Request.Context(), userID, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}
