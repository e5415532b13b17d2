package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"cardkeep/internal/config"
	"cardkeep/internal/database"
	"cardkeep/internal/handlers"
	"cardkeep/internal/middleware"
	"cardkeep/internal/models"
	"cardkeep/internal/notifier"
	"cardkeep/internal/repositories"
	"cardkeep/internal/services"
	"cardkeep/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "cardkeep: %v\n", err)
		os.Exit(2)
	}

	log, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cardkeep: %v\n", err)
		os.Exit(2)
	}
	zap.ReplaceGlobals(log)
	defer log.Sync()

	// --- Stores, mail and app ---
	stores, err := openStores(cfg)
	if err != nil {
		zap.L().Fatal("Failed to open stores", zap.Error(err))
	}
	defer stores.Close()

	mail, err := openNotifier(cfg)
	if err != nil {
		zap.L().Fatal("Failed to set up mail delivery", zap.Error(err))
	}
	defer mail.Close()

	app := newApp(cfg, stores, mail.notifier, prometheus.NewRegistry())

	// --- Start HTTP Server ---
	zap.L().Info("Starting server", zap.String("port", cfg.Port), zap.String("database", cfg.DatabaseDriver), zap.String("mail", cfg.Mail.Driver))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.Port); err != nil {
			zap.L().Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	zap.L().Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		zap.L().Error("Error during Fiber shutdown", zap.Error(err))
	}
	zap.L().Info("Server gracefully stopped")
}

// stores bundles the repositories the services read and write.
type stores struct {
	users   repositories.UserRepository
	shares  repositories.ShareRepository
	catalog repositories.CatalogRepository
	closers []func() error
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			zap.L().Warn("Error closing store", zap.Error(err))
		}
	}
}

// openStores builds the repositories for cfg.DatabaseDriver and wraps the
// catalog in a TTL cache unless cfg.CatalogCacheTTL is zero.
func openStores(cfg *config.Config) (*stores, error) {
	s := &stores{}

	switch cfg.DatabaseDriver {
	case "memory":
		catalog := repositories.NewMemoryCatalogRepository()
		seedCatalog(catalog)
		s.users = repositories.NewMemoryUserRepository()
		s.shares = repositories.NewMemoryShareRepository()
		s.catalog = catalog
	default:
		db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database handle: %w", err)
		}
		s.closers = append(s.closers, sqlDB.Close)
		s.users = repositories.NewGORMUserRepository(db)
		s.shares = repositories.NewGORMShareRepository(db)
		s.catalog = repositories.NewGORMCatalogRepository(db)
	}

	if cfg.CatalogCacheTTL > 0 {
		cached := repositories.NewCachedCatalogRepository(s.catalog, cfg.CatalogCacheTTL)
		s.closers = append(s.closers, cached.Close)
		s.catalog = cached
	}
	return s, nil
}

// mailer is the configured Notifier plus the clients it holds open.
type mailer struct {
	notifier services.Notifier
	closers  []func() error
}

func (m *mailer) Close() {
	for _, closeFn := range m.closers {
		if err := closeFn(); err != nil {
			zap.L().Warn("Error closing mail client", zap.Error(err))
		}
	}
}

// openNotifier builds the Notifier for cfg.Mail.Driver. In amqp mode it also
// starts the relay that drains the mail queue into SMTP.
func openNotifier(cfg *config.Config) (*mailer, error) {
	smtpConfig := notifier.SMTPConfig{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
	}

	switch cfg.Mail.Driver {
	case "smtp":
		return &mailer{notifier: notifier.NewSMTPNotifier(smtpConfig)}, nil
	case "amqp":
		mqConfig := rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.MailQueue}
		publisher, err := rabbitmq.NewClient(mqConfig)
		if err != nil {
			return nil, err
		}
		consumer, err := rabbitmq.NewClient(mqConfig)
		if err != nil {
			publisher.Close()
			return nil, err
		}
		relay := notifier.NewRelay(notifier.NewSMTPNotifier(smtpConfig), cfg.ResetTTL)
		if err := consumer.Consume(relay.Handle); err != nil {
			consumer.Close()
			publisher.Close()
			return nil, err
		}
		return &mailer{
			notifier: notifier.NewQueueNotifier(publisher),
			closers:  []func() error{consumer.Close, publisher.Close},
		}, nil
	default:
		return &mailer{notifier: notifier.NewLogNotifier(zap.L())}, nil
	}
}

// newApp wires services and handlers onto a new Fiber app.
func newApp(cfg *config.Config, s *stores, mail services.Notifier, reg *prometheus.Registry) *fiber.App {
	// --- Initialize Services ---
	hasher, err := services.NewPasswordHasher(cfg.PasswordHasher)
	if err != nil {
		// config.Load has already validated the name.
		panic(err)
	}
	tokens := services.NewTokenService(cfg.JWTSecret)
	accountService := services.NewAccountService(s.users, hasher, tokens, mail, services.AccountConfig{
		SessionTTL:  cfg.SessionTTL,
		ResetTTL:    cfg.ResetTTL,
		FrontendURL: cfg.FrontendURL,
	})
	collectionService := services.NewCollectionService(s.users)
	deckService := services.NewDeckService(s.users, s.catalog)
	sharingService := services.NewSharingService(s.users, s.shares)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	services.RegisterMetrics(reg)

	// --- Initialize Handlers ---
	limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})
	authHandler := handlers.NewAuthHandler(accountService, tokens, limiter.Handler())
	collectionHandler := handlers.NewCollectionHandler(collectionService, sharingService, tokens)
	deckHandler := handlers.NewDeckHandler(deckService, tokens)

	// --- Initialize Fiber App ---
	app := fiber.New(handlers.FiberConfig())

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New())

	// --- API Routes ---
	authHandler.RegisterRoutes(app)
	collectionHandler.RegisterRoutes(app)
	deckHandler.RegisterRoutes(app)

	// --- Health Check and Metrics ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return app
}

// seedCatalog populates the in-memory catalog so the memory driver can serve
// enriched decks without a seeded database.
func seedCatalog(repo *repositories.MemoryCatalogRepository) {
	cards := []models.Card{
		{ID: "ST01-001", Name: "Gundam", ImageURL: "https://example.com/cards/ST01-001.webp", SetName: "Heroic Beginnings", CardType: "UNIT", Rarity: "LR"},
		{ID: "ST01-002", Name: "Guncannon", ImageURL: "https://example.com/cards/ST01-002.webp", SetName: "Heroic Beginnings", CardType: "UNIT", Rarity: "C"},
		{ID: "ST01-010", Name: "Amuro Ray", ImageURL: "https://example.com/cards/ST01-010.webp", SetName: "Heroic Beginnings", CardType: "PILOT", Rarity: "R"},
	}
	for _, card := range cards {
		repo.Put(card)
	}
	zap.L().Debug("Seeded in-memory catalog", zap.Int("cards", len(cards)))
}
