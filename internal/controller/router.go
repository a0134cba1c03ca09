package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"print-order-service/internal/metrics"
	"print-order-service/internal/middleware"
	"print-order-service/internal/service"
	"print-order-service/internal/upload"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handlers bundles everything the router mounts.
type Handlers struct {
	Payment  *PaymentController
	Cart     *CartController
	Orders   *OrderController
	Products *ProductController
	Auth     service.Authenticator
	Files    *upload.Store
	Health   map[string]Pinger
	Gatherer prometheus.Gatherer
}

// NewRouter wires the routes under /api/v1.
func NewRouter(logger *zap.Logger, m *metrics.Metrics, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger, m))

	r.GET("/health", h.health)
	if h.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))
	}
	if h.Files != nil {
		r.Static(upload.URLPrefix, h.Files.Root())
	}

	api := r.Group("/api/v1")

	// Public
	api.GET("/payment/test-config", h.Payment.TestConfig)
	api.GET("/apparel/products", h.Products.List)
	api.GET("/apparel/products/:id", h.Products.Get)

	auth := api.Group("/")
	auth.Use(middleware.AuthMiddleware(h.Auth))

	auth.POST("/payment/process", h.Payment.Process)
	auth.GET("/payment/orders", h.Payment.MyOrders)
	auth.GET("/payment/orders/:orderId", h.Payment.MyOrder)
	auth.POST("/payment/orders/:orderId/reorder", h.Payment.Reorder)

	auth.POST("/cart/add", h.Cart.Add)
	auth.GET("/cart/mine", h.Cart.List)
	auth.DELETE("/cart/delete/:userId/:cartItemId", h.Cart.Remove)
	auth.DELETE("/cart/delete-multiple/:userId", h.Cart.RemoveMany)

	admin := auth.Group("/admin")
	admin.Use(middleware.AdminOnly())
	admin.GET("/orders", h.Orders.List)
	admin.GET("/orders/stats", h.Orders.Stats)
	admin.GET("/orders/export", h.Orders.Export)
	admin.GET("/orders/:orderId", h.Orders.Get)
	admin.GET("/orders/:orderId/export", h.Orders.ExportOne)
	admin.PUT("/orders/:orderId/status", h.Orders.UpdateStatus)
	admin.PUT("/orders/:orderId/notes", h.Orders.AddNote)
	admin.PUT("/orders/:orderId/shipping", h.Orders.UpdateShipping)

	catalog := auth.Group("/apparel")
	catalog.Use(middleware.AdminOnly())
	catalog.POST("/products", h.Products.Create)
	catalog.PUT("/products/:id", h.Products.Update)
	catalog.PATCH("/products/:id", h.Products.Update)
	catalog.DELETE("/products/:id", h.Products.Delete)

	return r
}

// GET /health
func (h Handlers) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(h.Health))
	for name, p := range h.Health {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "degraded"
	}
	c.JSON(status, gin.H{"status": state, "checks": checks})
}
