package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ticketing-svc/cache"
	"ticketing-svc/config"
	"ticketing-svc/database"
	"ticketing-svc/fulfillment"
	"ticketing-svc/handlers"
	"ticketing-svc/kafka"
	"ticketing-svc/mailer"
	"ticketing-svc/middleware"
	"ticketing-svc/paystack"
	"ticketing-svc/store"
	"ticketing-svc/tickets"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize database
	db, err := database.InitDB(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis (optional; verification falls back to the
	// database without it)
	rdb, err := cache.InitRedis(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, logger)
	if err != nil {
		logger.Warn("Redis unavailable, scan cache disabled", zap.Error(err))
		rdb = nil
	}

	// Initialize Kafka producer
	producer, err := kafka.InitProducer(cfg.Kafka.Broker, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}
	defer producer.Close()

	// Initialize OpenTelemetry
	shutdown, err := middleware.InitTracing("ticketing-service")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer shutdown()

	// Wire fulfillment pipeline
	purchases := store.NewPurchaseStore(db, logger)
	ticketStore := store.NewTicketStore(db, logger)
	generator := tickets.NewGenerator(cfg.Tickets.AssetDir, logger)
	smtpMailer := mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.User, cfg.SMTP.Password, cfg.SMTP.From, logger)
	orchestrator := fulfillment.NewOrchestrator(
		purchases, ticketStore, generator, smtpMailer,
		producer, cfg.Kafka.Topic, cfg.Tickets.UnitTimeout, logger,
	)

	paystackClient := paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, logger)

	webhookHandler := handlers.NewWebhookHandler(cfg.Paystack.SecretKey, orchestrator, logger)
	paymentHandler := handlers.NewPaymentHandler(paystackClient, logger)
	verifyHandler := handlers.NewVerifyHandler(ticketStore, rdb, logger)

	// Setup REST API with Gin
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("ticketing-service"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	router.POST("/payments", paymentHandler.InitializePayment)
	router.POST("/webhooks/paystack", webhookHandler.HandleWebhook)
	router.GET("/tickets/:identifier", verifyHandler.RedeemTicket)

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	// Start REST server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start REST server", zap.Error(err))
		}
	}()

	logger.Info("Ticketing Service started", zap.Int("port", cfg.HTTP.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	logger.Info("Server exited")
}
