package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/storage"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/logger"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/metrics"
)

// multipart framing allowance on top of the file limit
const formOverhead = 1 << 20

// UploadHandler accepts image uploads from the CMS editor.
type UploadHandler struct {
	store    storage.Uploader
	maxBytes int64
}

func NewUploadHandler(store storage.Uploader, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = 10 << 20
	}
	return &UploadHandler{store: store, maxBytes: maxBytes}
}

// Register mounts POST /upload behind requireAuth.
func (h *UploadHandler) Register(rg gin.IRoutes, requireAuth gin.HandlerFunc) {
	rg.POST("/upload", requireAuth, h.Upload)
}

// Upload stores the multipart field "file" and returns {filePath}.
func (h *UploadHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+formOverhead)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.reject(c, "too_large", "File too large")
			return
		}
		h.reject(c, "no_file", "No file uploaded")
		return
	}
	if fh.Size > h.maxBytes {
		h.reject(c, "too_large", "File too large")
		return
	}

	f, err := fh.Open()
	if err != nil {
		logger.Errorf("upload: open %q: %v", fh.Filename, err)
		metrics.Uploads.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		logger.Errorf("upload: read %q: %v", fh.Filename, err)
		metrics.Uploads.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}
	head = head[:n]
	ctype := http.DetectContentType(head)
	if n == 0 || !strings.HasPrefix(ctype, "image/") {
		h.reject(c, "bad_type", "Only image files are allowed")
		return
	}

	p, err := h.store.Put(c.Request.Context(), fh.Filename, io.MultiReader(bytes.NewReader(head), f), fh.Size, ctype)
	if err != nil {
		logger.Errorf("upload: store %q: %v", fh.Filename, err)
		metrics.Uploads.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload file"})
		return
	}
	metrics.Uploads.WithLabelValues("ok").Inc()
	logger.Infof("stored upload %q as %s (%d bytes, %s)", fh.Filename, p, fh.Size, ctype)
	c.JSON(http.StatusOK, gin.H{"filePath": p})
}

func (h *UploadHandler) reject(c *gin.Context, result, msg string) {
	metrics.Uploads.WithLabelValues(result).Inc()
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
