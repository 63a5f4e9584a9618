package handlers

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/motimate/backend/internal/apperr"
	"github.com/motimate/backend/internal/middleware"
	"github.com/motimate/backend/pkg/logger"
	"github.com/motimate/backend/pkg/utils"
)

// ImageStore is the slice of the object storage client the image upload
// needs; tests substitute an in-memory fake.
type ImageStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	ObjectURL(objectName string) string
}

type ImagesHandler struct {
	Storage ImageStore
}

func NewImagesHandler(storage ImageStore) *ImagesHandler {
	return &ImagesHandler{Storage: storage}
}

func (h *ImagesHandler) Upload(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "image is required")
	}

	filename := filepath.Base(strings.TrimSpace(fileHeader.Filename))
	ext := strings.ToLower(filepath.Ext(filename))

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = mime.TypeByExtension(ext)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return utils.Error(c, fiber.StatusBadRequest, "only image uploads are allowed")
	}

	stream, err := fileHeader.Open()
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed opening uploaded file")
	}
	defer stream.Close()

	objectName := fmt.Sprintf("images/%s/%s%s", currentUser.ID.String(), uuid.New().String(), ext)
	if err := h.Storage.Upload(c.Context(), objectName, stream, fileHeader.Size, contentType); err != nil {
		return respondError(c, apperr.ErrFailFileTask, "failed storing file")
	}

	imageURL := h.Storage.ObjectURL(objectName)

	logger.InfoWithUser(currentUser.ID.String(), "image_uploaded", map[string]interface{}{
		"object_name":  objectName,
		"size":         fileHeader.Size,
		"content_type": contentType,
	})

	return utils.Success(c, fiber.StatusCreated, fiber.Map{"imageURL": imageURL})
}
