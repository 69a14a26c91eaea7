package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/claydohscope/storefront/internal/api/middleware"
	"github.com/claydohscope/storefront/internal/domain"
	"github.com/claydohscope/storefront/internal/repository"
	"github.com/claydohscope/storefront/internal/service"
)

// HandlePlaceOrder handles POST /api/orders
func HandlePlaceOrder(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, requestHash, existingOrderID, isExisting := middleware.GetIdempotencyInfo(c)
		if isExisting {
			order, err := orders.GetOrder(c.Request.Context(), existingOrderID)
			if err != nil {
				respondError(c, logger, err, "Failed to fetch order")
				return
			}
			logger.Info("Idempotent replay of order", zap.Int64("order_id", order.ID))
			c.JSON(http.StatusOK, gin.H{"order": order})
			return
		}

		var req service.OrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		order, err := orders.PlaceOrder(c.Request.Context(), req, key, requestHash)
		if err != nil {
			respondError(c, logger, err, "Failed to place order")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order": order})
	}
}

// HandleListOrders handles GET /api/admin/orders
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := repos.Order.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err, "Failed to fetch orders")
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

// HandleUpdateOrderStatus handles PATCH /api/admin/orders/:id
func HandleUpdateOrderStatus(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.StatusUpdateRequest
		_ = c.ShouldBindJSON(&req)
		if req.Status == nil || *req.Status == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing status field"})
			return
		}

		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}

		order, err := orders.UpdateStatus(c.Request.Context(), id, domain.OrderStatus(*req.Status))
		if err != nil {
			respondError(c, logger, err, "Failed to update order")
			return
		}

		logger.Info("Order status updated", zap.Int64("order_id", id), zap.String("status", string(order.Status)))
		c.JSON(http.StatusOK, gin.H{"order": order})
	}
}

// HandleOrderHistory handles GET /api/admin/orders/:id/events
func HandleOrderHistory(orders *service.OrderService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		if _, err := orders.GetOrder(c.Request.Context(), id); err != nil {
			respondError(c, logger, err, "Failed to fetch order")
			return
		}

		events, err := orders.History(c.Request.Context(), id)
		if err != nil {
			respondError(c, logger, err, "Failed to fetch order events")
			return
		}

		out := make([]gin.H, 0, len(events))
		for _, e := range events {
			out = append(out, gin.H{
				"event_type": e.EventType,
				"event_data": e.EventData,
				"created_at": e.CreatedAt,
			})
		}
		c.JSON(http.StatusOK, gin.H{"events": out})
	}
}
