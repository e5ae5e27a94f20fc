package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-orders/middlewares"
	"storefront-orders/models"
	"storefront-orders/services"
)

// OrderController exposes the order lifecycle over REST.
type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

func consumerID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(middlewares.ConsumerIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

func (ctl *OrderController) CreateOrder(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("create", ok)
	}()

	id, ok := consumerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Orders.Create(c.Request.Context(), id, req)
	if err != nil {
		var verr *models.ValidationErrors
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Order validation failed", "errors": verr.Errors})
		case errors.Is(err, models.ErrUnauthenticated):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (ctl *OrderController) PayOrder(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("pay", ok)
	}()

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := ctl.Orders.Pay(c.Request.Context(), orderID)
	if err != nil {
		var transition *models.InvalidTransitionError
		var stock *models.InsufficientStockError
		switch {
		case errors.Is(err, models.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		case errors.As(err, &transition):
			c.JSON(http.StatusBadRequest, gin.H{"error": transition.Error()})
		case errors.As(err, &stock):
			c.JSON(http.StatusBadRequest, gin.H{"error": stock.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to pay order", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

func (ctl *OrderController) GetUserOrders(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("list", ok)
	}()

	id, ok := consumerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orders, err := ctl.Orders.ListForConsumer(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, orders)
}

func (ctl *OrderController) GetOrderDetails(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("details", ok)
	}()

	id, ok := consumerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	order, err := ctl.Orders.Get(c.Request.Context(), orderID, id)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}
