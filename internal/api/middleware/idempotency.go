package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/repository"
)

const IdempotencyKeyHeader = "Idempotency-Key"

const (
	idempotencyExistingOrderKey = "idempotency_existing_order_id"
	idempotencyKeyKey           = "idempotency_key"
	idempotencyRequestHashKey   = "idempotency_request_hash"
)

// IdempotencyMiddleware handles idempotency key validation
func IdempotencyMiddleware(keys repository.IdempotencyKeyRepository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only apply to POST/PUT/PATCH requests
		if c.Request.Method != http.MethodPost && c.Request.Method != http.MethodPut && c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			logger.Error("Failed to read request body for idempotency", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
			return
		}

		// Restore body for handler
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		hash := sha256.Sum256(body)
		requestHash := hex.EncodeToString(hash[:])

		existingKey, err := keys.GetByKey(c.Request.Context(), idempotencyKey)
		if err != nil {
			logger.Error("Failed to check idempotency key", zap.Error(err))
			c.Next()
			return
		}

		if existingKey != nil {
			if existingKey.RequestHash != requestHash {
				c.AbortWithStatusJSON(http.StatusConflict, gin.H{
					"error": "idempotency key conflict: same key used with different payload",
				})
				return
			}
			c.Set(idempotencyExistingOrderKey, existingKey.OrderID)
		} else {
			// New key - stored after the order is created
			c.Set(idempotencyKeyKey, idempotencyKey)
			c.Set(idempotencyRequestHashKey, requestHash)
		}

		c.Next()
	}
}

// GetIdempotencyInfo retrieves idempotency information from context
func GetIdempotencyInfo(c *gin.Context) (key string, requestHash string, existingOrderID int64, isExisting bool) {
	if existingID, exists := c.Get(idempotencyExistingOrderKey); exists {
		if id, ok := existingID.(int64); ok {
			return "", "", id, true
		}
	}

	return c.GetString(idempotencyKeyKey), c.GetString(idempotencyRequestHashKey), 0, false
}
