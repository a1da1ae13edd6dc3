package handler

import (
	"fmt"
	"net/http"
	"time"

	"photohunt/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadSize caps event poster uploads at 10 MiB.
const maxUploadSize = 10 << 20

type UploadHandler struct {
	cloudinary cloudinary.Client
}

func NewUploadHandler(client cloudinary.Client) *UploadHandler {
	return &UploadHandler{cloudinary: client}
}

// UploadEventImage stores an event poster and returns the optimized URLs.
func (h *UploadHandler) UploadEventImage(c *gin.Context) {
	if h.cloudinary == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads not configured"})
		return
	}
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()
	if header.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	publicID := fmt.Sprintf("event_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
	url, thumbURL, err := h.cloudinary.UploadImage(c.Request.Context(), file, "events", publicID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"url":           url,
		"thumbnail_url": thumbURL,
	})
}
