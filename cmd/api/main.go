package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/venuepass/ticketing-service/internal/api/http"
	"github.com/venuepass/ticketing-service/internal/api/http/handlers"
	"github.com/venuepass/ticketing-service/internal/auth"
	"github.com/venuepass/ticketing-service/internal/config"
	"github.com/venuepass/ticketing-service/internal/observability"
	"github.com/venuepass/ticketing-service/internal/persistence"
	"github.com/venuepass/ticketing-service/internal/repository"
	"github.com/venuepass/ticketing-service/internal/service"
	"github.com/venuepass/ticketing-service/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	clientRepo := repository.NewClientRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	templateRepo := repository.NewTicketTemplateRepository(pool)
	ticketRepo := repository.NewCachedTicketRepository(
		repository.NewTicketRepository(pool),
		redis.Client,
		cfg.Redis.TicketCacheTTL(),
		logger,
	)

	tokens := token.NewService(cfg.Token.FallbackSecret)
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg.Auth, userRepo, logger)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		TemplateRepo: templateRepo,
		EventRepo:    eventRepo,
		ClientRepo:   clientRepo,
		Tokens:       tokens,
		TokenTTL:     cfg.Token.DefaultTTL(),
		Logger:       logger,
	}, service.IssueTicketSchema())

	eventService := service.NewEventService(service.EventDependencies{
		EventRepo:    eventRepo,
		TemplateRepo: templateRepo,
		Logger:       logger,
	}, service.CreateEventSchema(time.Now), service.CreateTemplateSchema())

	clientService := service.NewClientService(clientRepo, service.CreateClientSchema(time.Now), logger)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Operators:      handlers.NewOperatorsHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Events:         handlers.NewEventsHandler(eventService),
		Clients:        handlers.NewClientsHandler(clientService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
