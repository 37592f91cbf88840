package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aadhilm732/TGTPETSUAE/config"
	"github.com/aadhilm732/TGTPETSUAE/internal/api"
	"github.com/aadhilm732/TGTPETSUAE/internal/assistant"
	"github.com/aadhilm732/TGTPETSUAE/internal/broker"
	"github.com/aadhilm732/TGTPETSUAE/internal/imagehost"
	"github.com/aadhilm732/TGTPETSUAE/internal/redisclient"
	"github.com/aadhilm732/TGTPETSUAE/internal/service"
	"github.com/aadhilm732/TGTPETSUAE/internal/store"
	"github.com/aadhilm732/TGTPETSUAE/internal/util"
	"github.com/aadhilm732/TGTPETSUAE/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront service")

	tp, err := util.InitTracer("storefront", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	shippingFee, err := decimal.NewFromString(cfg.Business.ShippingFee)
	if err != nil {
		log.Fatalf("Invalid shipping fee: %v", err)
	}

	gateway := service.NewStripeGateway(cfg.Payment)
	images := imagehost.NewClient(cfg.ImageHost.PrivateKey, cfg.ImageHost.UploadURL,
		cfg.ImageHost.URLEndpoint, cfg.ImageHost.Timeout)
	assistantClient := assistant.NewClient(cfg.Assistant.APIKey, cfg.Assistant.Model,
		cfg.Assistant.BaseURL, cfg.Assistant.Timeout)

	orderService := service.NewOrderService(db, redisClient, eventPublisher, gateway,
		shippingFee, cfg.Payment.Currency)
	storeService := service.NewStoreService(db, redisClient, images)
	ratingService := service.NewRatingService(db)
	listingService := service.NewListingService(assistantClient)
	addressService := service.NewAddressService(db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	paymentConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
	paymentWorker := worker.NewPaymentWorker(paymentConsumer, orderService)
	go func() {
		if err := paymentWorker.Start(workerCtx); err != nil {
			log.Printf("Payment worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(orderService, storeService, ratingService,
		listingService, addressService, gateway, eventPublisher,
		cfg.Auth.JWTSecret, cfg.Auth.MemberPlan)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	paymentWorker.Stop()

	log.Println("Server exited")
}
