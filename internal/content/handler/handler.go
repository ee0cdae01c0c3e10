package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/logger"
)

// MaxDocumentBytes caps the size of a POSTed content document.
const MaxDocumentBytes = 5 << 20

// Store is the content store as seen by the HTTP layer.
type Store interface {
	Read(ctx context.Context) (content.Document, error)
	Replace(ctx context.Context, doc content.Document) error
}

// RegisterContentRoutes mounts GET and POST /content on rg. requireAuth runs
// before the write handler, so unauthenticated writes never touch the store.
func RegisterContentRoutes(rg gin.IRoutes, store Store, requireAuth gin.HandlerFunc) {
	rg.GET("/content", func(c *gin.Context) {
		doc, err := store.Read(c.Request.Context())
		if err != nil {
			if errors.Is(err, content.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
				return
			}
			logger.Errorf("read content: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read content"})
			return
		}
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusOK, doc)
	})

	rg.POST("/content", requireAuth, func(c *gin.Context) {
		raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxDocumentBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Content too large"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": "No content provided"})
			return
		}
		doc, err := content.Decode(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No content provided"})
			return
		}
		if err := store.Replace(c.Request.Context(), doc); err != nil {
			if errors.Is(err, content.ErrInvalidInput) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "No content provided"})
				return
			}
			logger.Errorf("replace content: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save content"})
			return
		}
		logger.Infof("content document replaced (%d top-level keys, %d bytes)", len(doc), len(raw))
		c.JSON(http.StatusOK, gin.H{"message": "Content saved successfully"})
	})
}
