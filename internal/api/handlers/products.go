package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/repository"
)

type createProductRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Image       string           `json:"image"`
}

// HandleListProducts handles GET /api/products
func HandleListProducts(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := repos.Product.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err, "Failed to fetch products")
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

// HandleCreateProduct handles POST /api/admin/products
func HandleCreateProduct(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createProductRequest
		// an unreadable body counts as an empty one
		_ = c.ShouldBindJSON(&req)

		name := strings.TrimSpace(req.Name)
		if name == "" || req.Price == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields: name and price are required"})
			return
		}
		if req.Price.IsNegative() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Price must not be negative"})
			return
		}

		product := &domain.Product{
			Name:        name,
			Description: req.Description,
			Price:       *req.Price,
			Image:       strings.TrimSpace(req.Image),
		}
		if err := repos.Product.Create(c.Request.Context(), product); err != nil {
			respondError(c, logger, err, "Failed to create product")
			return
		}

		logger.Info("Product created", zap.Int64("product_id", product.ID), zap.String("name", product.Name))
		c.JSON(http.StatusOK, gin.H{"product": product})
	}
}
