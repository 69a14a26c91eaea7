package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/repository"
)

type createMediaRequest struct {
	Title   string  `json:"title"`
	Type    string  `json:"type"`
	Src     string  `json:"src"`
	Caption *string `json:"caption"`
	Poster  *string `json:"poster"`
}

func optional(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// HandleCreateMedia handles POST /api/admin/media
func HandleCreateMedia(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createMediaRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Bad request"})
			return
		}

		if req.Title == "" || req.Type == "" || req.Src == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
			return
		}
		mediaType := domain.MediaType(req.Type)
		if !mediaType.IsValid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid media type"})
			return
		}

		media := &domain.Media{
			Title:   req.Title,
			Type:    mediaType,
			Src:     req.Src,
			Caption: optional(req.Caption),
			Poster:  optional(req.Poster),
		}
		if err := repos.Media.Create(c.Request.Context(), media); err != nil {
			respondError(c, logger, err, "Failed to upload media")
			return
		}

		c.JSON(http.StatusOK, media)
	}
}

// HandleListMedia handles GET /api/admin/media
func HandleListMedia(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := repos.Media.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err, "Failed to fetch media")
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
