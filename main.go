package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-station/internal/auth"
	busdb "ms-station/internal/bus/db"
	"ms-station/internal/bus/bus_api"
	"ms-station/internal/cache"
	"ms-station/internal/config"
	"ms-station/internal/database/migrations"
	facilitydb "ms-station/internal/facility/db"
	"ms-station/internal/facility/facility_api"
	"ms-station/internal/kafka"
	"ms-station/internal/logger"
	"ms-station/internal/models"
	"ms-station/internal/order"
	orderdb "ms-station/internal/order/db"
	"ms-station/internal/order/order_api"
	"ms-station/internal/order/qr"
	"ms-station/internal/storage"
	"ms-station/internal/trip"
	tripdb "ms-station/internal/trip/db"
	"ms-station/internal/trip/trip_api"

	"ms-station/internal/bus"
	"ms-station/internal/facility"
)

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	logger.LogDatabase("CONNECT", "postgres", "✅ PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())
	bunDB.RegisterModel((*models.BusFacility)(nil))

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}

	logger.LogDatabase("CONNECT", "redis", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))
	return bunDB, redisClient
}

// requestLogger records every request with its status and latency.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.LogAPI(r.Method, r.URL.Path, fmt.Sprintf("%d", ww.Status()), time.Since(start).String())
		})
	}
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Station Service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	if cfg.Database.AutoMigrate {
		runner := migrations.NewRunner(bunDB, migrations.Options{
			MigrationsDir: cfg.Database.MigrationDir,
			AutoMigrate:   true,
		})
		if err := runner.RunMigrations(); err != nil {
			logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
		}
		logger.Info("DATABASE", "Schema migrations applied")
	}

	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		logger.Info("KAFKA", fmt.Sprintf("Using Kafka brokers: %v", cfg.Kafka.Brokers))
		kafkaProducer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer kafkaProducer.Close()

		requiredTopics := []string{
			cfg.Kafka.Topics.OrderCreated,
			cfg.Kafka.Topics.TripUpdated,
		}
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, requiredTopics); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			for _, topic := range requiredTopics {
				logger.LogKafka("ENSURE", topic, "topic ready")
			}
		}
	} else {
		logger.Warn("KAFKA", "Kafka disabled, order and trip events will not be published")
	}

	assetStore, err := storage.NewAssetStore(cfg.Assets.Dir)
	if err != nil {
		logger.Fatal("STORAGE", fmt.Sprintf("Asset store init failed: %v", err))
	}

	verifier, err := auth.NewVerifier()
	if err != nil {
		logger.Fatal("AUTH", fmt.Sprintf("Token verifier init failed: %v", err))
	}

	tripCache := cache.NewTripCache(redisClient, cfg.Redis.TripCacheTTL)
	qrGen := qr.NewQRGenerator(os.Getenv("QR_SECRET_KEY"))

	facilityService := facility.NewFacilityService(&facilitydb.DB{Bun: bunDB})
	busService := bus.NewBusService(&busdb.DB{Bun: bunDB}, assetStore)

	var tripEvents trip.EventPublisher
	var orderEvents order.KafkaPublisher
	if kafkaProducer != nil {
		tripEvents = kafkaProducer
		orderEvents = kafkaProducer
	}

	tripService := trip.NewTripService(&tripdb.DB{Bun: bunDB}, tripCache, tripEvents, cfg.Kafka.Topics.TripUpdated, logger)
	orderService := order.NewOrderService(&orderdb.DB{Bun: bunDB}, tripCache, orderEvents, cfg.Kafka.Topics.OrderCreated, qrGen, logger)

	facilityHandler := &facility_api.Handler{FacilityService: facilityService, Logger: logger}
	busHandler := &bus_api.Handler{BusService: busService, Logger: logger}
	tripHandler := &trip_api.Handler{TripService: tripService, Logger: logger}
	orderHandler := &order_api.Handler{OrderService: orderService, Logger: logger}

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(requestLogger(logger))

	// --- Public Routes ---
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier, logger))
		logger.Info("AUTH", "Bearer token middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			r.Route("/facilities", func(r chi.Router) {
				r.Use(auth.StaffOrReadOnly)
				r.Get("/", facilityHandler.ListFacilities)
				r.Post("/", facilityHandler.CreateFacility)
			})
			logger.Info("ROUTER", "Facility routes registered under /api/facilities")

			r.Route("/buses", func(r chi.Router) {
				r.Group(func(r chi.Router) {
					r.Use(auth.StaffOrReadOnly)
					r.Get("/", busHandler.ListBuses)
					r.Get("/{busId}", busHandler.GetBus)
					r.Post("/", busHandler.CreateBus)
				})
				// upload-image is gated harder than the collection rule
				r.Group(func(r chi.Router) {
					r.Use(auth.RequireStaff)
					r.Post("/{busId}/upload-image", busHandler.UploadImage)
				})
			})
			logger.Info("ROUTER", "Bus routes registered under /api/buses")

			r.Route("/trips", func(r chi.Router) {
				r.Use(auth.StaffOrReadOnly)
				r.Get("/", tripHandler.ListTrips)
				r.Get("/{tripId}", tripHandler.GetTrip)
				r.Post("/", tripHandler.CreateTrip)
				r.Put("/{tripId}", tripHandler.UpdateTrip)
				r.Delete("/{tripId}", tripHandler.DeleteTrip)
			})
			logger.Info("ROUTER", "Trip routes registered under /api/trips")

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", orderHandler.ListOrders)
				r.Get("/{orderId}", orderHandler.GetOrder)
				r.Post("/", orderHandler.PlaceOrder)
			})
			logger.Info("ROUTER", "Order routes registered under /api/orders")
		})
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Station Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.LogProcess("STARTUP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.LogProcess("SHUTDOWN", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Station Service shutdown complete")
	}
}
