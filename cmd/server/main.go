package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"

	"delivered-status-service/internal/config"
	"delivered-status-service/internal/controller"
	"delivered-status-service/internal/delivered"
	"delivered-status-service/internal/email"
	"delivered-status-service/internal/hook"
	"delivered-status-service/internal/legacy"
	"delivered-status-service/internal/logging"
	"delivered-status-service/internal/middleware"
	"delivered-status-service/internal/rabbit"
	"delivered-status-service/internal/repository"
	"delivered-status-service/internal/service"
	"delivered-status-service/internal/status"
)

func main() {
	cfg := config.Load()
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	ctx := context.Background()

	// Repositorio
	repo, closeStore, err := repository.Open(ctx, cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStore(context.Background())

	// Corrección heredada: sólo si el operador la habilita
	cleanup := legacy.NewCleanup(repo, cfg.LegacyRevertDelivered, logger)
	if _, err := cleanup.RunOnStartup(ctx); err != nil {
		log.Fatalf("legacy cleanup: %v", err)
	}

	// Registro de estados, hooks y servicios
	registry := status.NewRegistry()
	hooks := hook.NewManager(logger)
	orderService := service.NewOrderStatusService(repo, registry, hooks, logger)
	authService := service.NewAuthService(cfg.AuthURL, cfg.AuthCacheTTL)

	catalog := email.NewCatalog()
	deliveredEmail := email.NewDeliveredOrderEmail(email.Settings{
		Enabled:           cfg.DeliveredEmail.Enabled,
		Subject:           cfg.DeliveredEmail.Subject,
		Heading:           cfg.DeliveredEmail.Heading,
		AdditionalContent: cfg.DeliveredEmail.AdditionalContent,
		EmailType:         cfg.DeliveredEmail.EmailType,
		ReplyTo:           cfg.DeliveredEmail.ReplyTo,
	}, cfg.SiteTitle, cfg.HostVersion, repo, newMailer(cfg, logger), logger)

	if err := delivered.Setup(delivered.Deps{
		Registry: registry,
		Hooks:    hooks,
		Service:  orderService,
		Email:    deliveredEmail,
		Catalog:  catalog,
		Logger:   logger,
	}); err != nil {
		log.Fatal(err)
	}

	// Conexión a RabbitMQ (opcional)
	if cfg.RabbitURL != "" {
		conn, err := amqp091.Dial(cfg.RabbitURL)
		if err != nil {
			log.Fatalf("Error conectando a RabbitMQ: %v", err)
		}
		defer conn.Close()
		ch, err := conn.Channel()
		if err != nil {
			log.Fatalf("Error creando canal en RabbitMQ: %v", err)
		}

		consumer := rabbit.NewPlaceOrderConsumer(orderService, logger)
		if err := rabbit.SetupConsumers(ctx, ch, consumer, logger); err != nil {
			log.Fatalf("Error configurando consumers: %v", err)
		}
		publisher, err := rabbit.SetupPublisher(ch)
		if err != nil {
			log.Fatalf("Error declarando exchange: %v", err)
		}
		hooks.AddAction(hook.ActionOrderStatusChanged, publisher.Handle)
	}

	// Router
	r := gin.Default()
	ctrl := controller.NewOrderController(orderService, catalog)
	ctrl.Register(r, middleware.AuthMiddleware(authService))

	// Ejecutar servidor
	logger.Info("delivered status service listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

// newMailer usa SMTP si hay host configurado; si no, sólo registra los envíos.
func newMailer(cfg *config.Config, logger *slog.Logger) email.Mailer {
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not set, emails will only be logged")
		return email.NewLoggerMailer(logger)
	}
	return email.NewSMTPMailer(email.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
}
