package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nekogravitycat/hotel-booking-backend/internal/app"
	"github.com/nekogravitycat/hotel-booking-backend/internal/config"
	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
	"github.com/nekogravitycat/hotel-booking-backend/internal/event"
	"github.com/nekogravitycat/hotel-booking-backend/internal/jobs"
	"github.com/nekogravitycat/hotel-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/hotel-booking-backend/internal/realtime"
)

const serviceName = "hotel-booking-backend"

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	// Connect the selected store
	var (
		pool    *pgxpool.Pool
		mongoDB *mongo.Database
	)
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		pool, err = db.NewPool(ctx, cfg.DBDSN)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to db")
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			log.WithError(err).Fatal("failed to apply schema")
		}
	case config.BackendMongo:
		client, err := db.NewMongoClient(ctx, cfg.MongoURI)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to mongo")
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(disconnectCtx); err != nil {
				log.WithError(err).Warn("mongo disconnect failed")
			}
		}()

		mongoDB = client.Database(cfg.MongoDatabase)
		if err := db.MigrateMongo(ctx, mongoDB); err != nil {
			log.WithError(err).Fatal("failed to ensure mongo indexes")
		}
	}
	log.WithField("backend", cfg.StoreBackend).Info("store connected")

	// Booking events go to connected admins and, when configured, to Kafka
	hub := realtime.NewHub(log)
	defer hub.Close()
	publishers := event.Multi{hub}

	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := event.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, serviceName, log)
		if err != nil {
			log.WithError(err).Fatal("failed to create kafka publisher")
		}
		defer func() {
			if err := kafkaPublisher.Close(); err != nil {
				log.WithError(err).Warn("kafka publisher close failed")
			}
		}()
		publishers = append(publishers, kafkaPublisher)
		log.WithField("topic", cfg.KafkaTopic).Info("kafka publishing enabled")
	}

	container, err := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		Backend:      cfg.StoreBackend,
		DBPool:       pool,
		MongoDB:      mongoDB,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		BcryptCost:   cfg.BcryptCost,
		Publisher:    publishers,
		Hub:          hub,
		Log:          log,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build application")
	}

	// Completion job stops with ctx
	completion := jobs.NewCompletionJob(container.BookingService, cfg.CompletionInterval, log)
	jobDone := make(chan struct{})
	go func() {
		defer close(jobDone)
		completion.Run(ctx)
	}()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           container.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	log.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced to shutdown")
	}
	<-jobDone

	log.Info("server exited gracefully")
}
