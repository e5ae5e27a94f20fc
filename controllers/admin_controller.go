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

func (ctl *OrderController) AdminListOrders(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("admin_list", ok)
	}()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "20"))

	filter := services.ListFilter{
		Status:  models.OrderStatus(c.Query("status")),
		Search:  c.Query("search"),
		Page:    page,
		PerPage: perPage,
	}

	orders, total, err := ctl.Orders.List(c.Request.Context(), filter)
	if err != nil {
		var status *models.StatusError
		if errors.As(err, &status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": status.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error", "details": err.Error()})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 20
	}
	pages := (total + filter.PerPage - 1) / filter.PerPage

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"page":   filter.Page,
		"pages":  pages,
	})
}

func (ctl *OrderController) AdminUpdateStatus(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("admin_update_status", ok)
	}()

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID"})
		return
	}

	var request struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := ctl.Orders.UpdateStatus(c.Request.Context(), orderID, models.OrderStatus(request.Status))
	if err != nil {
		var statusErr *models.StatusError
		var transition *models.InvalidTransitionError
		switch {
		case errors.As(err, &statusErr):
			c.JSON(http.StatusBadRequest, gin.H{"error": statusErr.Error()})
		case errors.As(err, &transition):
			c.JSON(http.StatusBadRequest, gin.H{"error": transition.Error()})
		case errors.Is(err, models.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status", "details": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, order)
}

func (ctl *OrderController) AdminSalesReport(c *gin.Context) {
	defer func() {
		ok := c.Writer.Status() >= 200 && c.Writer.Status() < 300
		middlewares.RecordOrderOperation("sales_report", ok)
	}()

	from, to, err := services.ParseReportRange(c.Query("from"), c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range, expected YYYY-MM-DD"})
		return
	}

	filter := services.ReportFilter{
		Status: models.OrderStatus(c.Query("status")),
		From:   from,
		To:     to,
	}

	result, err := ctl.Orders.SalesReport(c.Request.Context(), filter)
	if err != nil {
		var statusErr *models.StatusError
		if errors.As(err, &statusErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": statusErr.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build sales report", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
