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
	"github.com/gin-gonic/gin/binding"
	"github.com/joho/godotenv"

	"petcare/internal/config"
	"petcare/internal/database"
	"petcare/internal/gateway"
	"petcare/internal/messaging"
	"petcare/internal/modules/admin"
	"petcare/internal/modules/booking"
	"petcare/internal/modules/payment"
	jwtsvc "petcare/internal/pkg/jwt"
	"petcare/internal/pkg/validator"
	"petcare/internal/repository"
	"petcare/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("level=warn msg=.env not loaded err=%v", err)
	}

	cfg, err := config.LoadRuntimeConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	accounts, err := config.LoadGatewayAccounts()
	if err != nil {
		log.Fatalf("gateway config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	registry := gateway.NewRegistry(accounts, gateway.MercadoPagoFactory(cfg.GatewayBaseURL, cfg.GatewayTimeout), log.Printf)
	if len(registry.Countries()) == 0 {
		log.Printf("level=warn msg=no gateway account configured, payment endpoints will answer 400")
	}

	var (
		events messaging.EventPublisher = messaging.NopPublisher{}
		rabbit *messaging.RabbitMQClient
	)
	if cfg.AMQPURL != "" {
		rabbit = messaging.NewRabbitMQClient(messaging.RabbitMQConfig{URL: cfg.AMQPURL, Exchange: cfg.AMQPExchange})
		if err := rabbit.Connect(); err != nil {
			log.Printf("level=error msg=rabbitmq unavailable, payment events disabled err=%v", err)
			rabbit = nil
		} else {
			events = messaging.NewPublisher(rabbit)
		}
	}

	bookingRepo := repository.NewBookingRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	journalRepo := repository.NewWebhookEventRepository(db)

	paymentService := payment.NewService(bookingRepo, transactionRepo, journalRepo, registry, events, payment.Options{
		DefaultCountry:  cfg.DefaultCountry,
		NotificationURL: cfg.NotificationURL,
		BackURLs: gateway.BackURLs{
			Success: cfg.SuccessURL,
			Failure: cfg.FailureURL,
			Pending: cfg.PendingURL,
		},
		GatewayTimeout: cfg.GatewayTimeout,
		WebhookSecret:  cfg.WebhookSecret,
		Sandbox:        cfg.GatewaySandbox,
	}, log.Printf)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)

	if cfg.AppEnv == "prod" || cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	validator.RegisterJSONNames(binding.Validator.Engine())

	r := server.NewRouter(server.Deps{
		DB:          db,
		JWT:         j,
		Payments:    paymentService,
		Bookings:    booking.NewService(bookingRepo, transactionRepo),
		Admin:       admin.NewService(journalRepo),
		CORSOrigins: cfg.CORSAllowedOrigins,
		Loggerf:     log.Printf,
		Health: func() gin.H {
			return gin.H{
				"countries": registry.Countries(),
				"events":    rabbit != nil && rabbit.IsConnected(),
			}
		},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("level=info msg=listening addr=%s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("level=info msg=shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("level=error msg=graceful shutdown failed err=%v", err)
	}
	if rabbit != nil {
		if err := rabbit.Close(); err != nil {
			log.Printf("level=warn msg=rabbitmq close failed err=%v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
