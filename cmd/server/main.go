package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.uber.org/zap"

	"print-order-service/internal/cache"
	"print-order-service/internal/config"
	"print-order-service/internal/controller"
	"print-order-service/internal/logging"
	"print-order-service/internal/mailer"
	"print-order-service/internal/metrics"
	"print-order-service/internal/payment"
	"print-order-service/internal/rabbit"
	"print-order-service/internal/repository"
	"print-order-service/internal/sequencer"
	"print-order-service/internal/service"
	"print-order-service/internal/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env)
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.ContextWithLogger(ctx, logger)

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// MongoDB
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := repository.ConnectMongoDB(connectCtx, cfg.MongoURI, cfg.MongoDBName)
	if err == nil {
		err = repository.EnsureIndexes(connectCtx, db)
	}
	cancel()
	if err != nil {
		logger.Fatal("mongodb unavailable", zap.Error(err))
	}
	defer db.Client().Disconnect(context.Background())

	// Redis is optional: without it the cart is read straight from MongoDB.
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	defer rdb.Close()
	var cartCache cache.CartCache
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, cart cache disabled", zap.Error(err))
	} else {
		cartCache = cache.NewRedisCartCache(rdb)
	}

	orderRepo := repository.NewMongoOrderRepository(db)
	cartRepo := repository.NewMongoCartRepository(db)
	productRepo := repository.NewMongoProductRepository(db)
	numbers := sequencer.New(repository.NewMongoCounterRepository(db))

	gateway := payment.NewAuthorizeNetGateway(cfg.Gateway, &http.Client{}, m)
	if !gateway.Configured() {
		logger.Warn("payment gateway credentials missing, checkout will fail until configured")
	}

	mail := mailer.New(cfg.Mail, cfg.StorefrontURL, cfg.BackendBaseURL)
	notifier, closeRabbit := setupNotifications(ctx, cfg.RabbitURL, mail, m, logger)
	defer closeRabbit()

	files := upload.NewStore(cfg.UploadDir)
	cartSvc := service.NewCartService(cartRepo, cartCache)
	orderSvc := service.NewOrderService(orderRepo, cartSvc, notifier, m)
	checkoutSvc := service.NewCheckoutService(gateway, orderRepo, numbers, cartSvc, notifier, m)
	productSvc := service.NewProductService(productRepo, files)

	health := map[string]controller.Pinger{
		"mongodb": controller.PingFunc(func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		}),
	}
	if cartCache != nil {
		health["redis"] = controller.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}

	router := controller.NewRouter(logger, m, controller.Handlers{
		Payment:  controller.NewPaymentController(checkoutSvc, orderSvc, gateway),
		Cart:     controller.NewCartController(cartSvc, files, cfg.BackendBaseURL),
		Orders:   controller.NewOrderController(orderSvc, cfg.BackendBaseURL),
		Products: controller.NewProductController(productSvc, files, cfg.BackendBaseURL),
		Auth:     service.NewAuthService(cfg.AuthURL),
		Files:    files,
		Health:   health,
		Gatherer: reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("print order service listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// setupNotifications routes notifications through RabbitMQ when the broker
// is reachable and falls back to sending mail inline otherwise.
func setupNotifications(ctx context.Context, url string, mail *mailer.Mailer, m *metrics.Metrics, logger *zap.Logger) (service.Notifier, func()) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		logger.Warn("rabbitmq unavailable, sending notifications inline", zap.Error(err))
		return mail, func() {}
	}

	pubCh, err := conn.Channel()
	if err == nil {
		err = rabbit.DeclareExchange(pubCh)
	}
	var subCh *amqp091.Channel
	if err == nil {
		subCh, err = conn.Channel()
	}
	if err == nil {
		err = rabbit.SetupConsumers(ctx, subCh, rabbit.NewNotificationConsumer(mail, m))
	}
	if err != nil {
		logger.Warn("rabbitmq setup failed, sending notifications inline", zap.Error(err))
		conn.Close()
		return mail, func() {}
	}

	return rabbit.NewPublisher(pubCh), func() { conn.Close() }
}
