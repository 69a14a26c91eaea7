package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/objectstore"
)

// MaxUploadBytes caps a single upload (video loops included)
const MaxUploadBytes = 100 << 20

// HandleUpload handles POST /api/admin/uploads/:bucket
func HandleUpload(store objectstore.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bucket := c.Param("bucket")
		if !domain.IsKnownBucket(bucket) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown bucket"})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
		header, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing file"})
			return
		}
		f, err := header.Open()
		if err != nil {
			respondError(c, logger, err, "Failed to read upload")
			return
		}
		defer f.Close()

		url, err := store.Upload(c.Request.Context(), bucket, header.Filename, f, header.Header.Get("Content-Type"))
		if err != nil {
			respondError(c, logger, err, "Failed to upload file")
			return
		}

		logger.Info("File uploaded", zap.String("bucket", bucket), zap.String("url", url))
		c.JSON(http.StatusOK, gin.H{"url": url})
	}
}
