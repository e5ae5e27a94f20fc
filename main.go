package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-orders/config"
	"storefront-orders/consumers"
	"storefront-orders/controllers"
	"storefront-orders/database"
	"storefront-orders/middlewares"
	"storefront-orders/rabbitmq"
	"storefront-orders/services"
)

func main() {
	cfg := config.LoadConfig()

	store, err := database.NewStore(cfg.DSN())
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		log.Fatalf("Schema initialization failed: %v", err)
	}

	rmq, err := rabbitmq.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("RabbitMQ initialization failed: %v", err)
	}
	defer rmq.Close()

	if err := rmq.SetupQueues(); err != nil {
		log.Fatalf("Failed to setup RabbitMQ queues: %v", err)
	}

	orders := &services.OrderService{
		Catalog:       store,
		Orders:        store,
		Reports:       store,
		Events:        rmq,
		PaymentWindow: cfg.PaymentWindow,
	}

	go consumers.StartOrderConsumer(rmq.Channel, cfg, orders)

	ctl := controllers.NewOrderController(orders)

	r := gin.Default()
	r.Use(middlewares.PrometheusMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		if err := store.DB.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	authGroup := r.Group("/api")
	authGroup.Use(middlewares.AuthMiddleware(cfg.JWTSecret))
	{
		authGroup.POST("/orders", ctl.CreateOrder)
		authGroup.GET("/orders", ctl.GetUserOrders)
		authGroup.GET("/orders/:id", ctl.GetOrderDetails)
		authGroup.POST("/orders/:id/pay", ctl.PayOrder)

		authGroup.GET("/orders/admin", ctl.AdminListOrders)
		authGroup.PUT("/orders/admin/:id/status", ctl.AdminUpdateStatus)
		authGroup.GET("/orders/admin/reports/sales", ctl.AdminSalesReport)
	}

	port := ":8080"
	log.Printf("Storefront order service starting on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
