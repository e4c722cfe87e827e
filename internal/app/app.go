package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ulogstudios/review-bot/internal/config"
	"github.com/ulogstudios/review-bot/internal/discord"
	"github.com/ulogstudios/review-bot/internal/event"
	handler "github.com/ulogstudios/review-bot/internal/handler/http"
	"github.com/ulogstudios/review-bot/internal/repository/postgres"
	"github.com/ulogstudios/review-bot/internal/service"
	"github.com/ulogstudios/review-bot/internal/session"
	"github.com/ulogstudios/review-bot/internal/storefront/tebex"
	"github.com/ulogstudios/review-bot/migrations"
	"github.com/ulogstudios/review-bot/pkg/database"
	"github.com/ulogstudios/review-bot/pkg/health"
	"github.com/ulogstudios/review-bot/pkg/httpclient"
	pkgkafka "github.com/ulogstudios/review-bot/pkg/kafka"
)

// App wires together all dependencies and runs the review bot.
type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	pool         *pgxpool.Pool
	producer     *pkgkafka.Producer
	bot          *discord.Bot
	httpServer   *http.Server
	sweeperStop  context.CancelFunc
	memorySweep  *session.MemoryStore
	sessionSweep time.Duration
}

// NewApp creates the application, initializing all dependencies. A Postgres
// that cannot be reached after the startup retries is fatal.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pgCfg := database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
	}

	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)

	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	app := &App{
		cfg:          cfg,
		logger:       logger,
		pool:         pool,
		sessionSweep: cfg.SessionSweep(),
	}

	// Session store: in-memory by default, Redis when configured.
	var sessions session.Store
	switch cfg.SessionBackend {
	case "redis":
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		sessions = session.NewRedisStore(client, cfg.SessionTimeout())
		logger.Info("using redis session store", slog.String("addr", client.Options().Addr))
	default:
		memStore := session.NewMemoryStore(cfg.SessionTimeout())
		app.memorySweep = memStore
		sessions = memStore
		logger.Info("using in-memory session store")
	}

	// Kafka event producer, only when enabled.
	var eventProducer *event.Producer
	if cfg.KafkaEnabled {
		app.producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		eventProducer = event.NewProducer(app.producer, logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	}

	// Tebex client behind a circuit breaker.
	baseClient := httpclient.New(httpclient.DefaultConfig())
	cbClient := httpclient.NewCircuitBreakerClient(
		baseClient,
		httpclient.DefaultCircuitBreakerConfig("tebex"),
		logger,
	)
	provider := tebex.NewClient(tebex.Config{
		PluginAPIURL:   cfg.TebexPluginAPIURL,
		HeadlessAPIURL: cfg.TebexHeadlessAPIURL,
		Secret:         cfg.TebexSecret,
		WebstoreID:     cfg.TebexWebstoreID,
	}, cbClient, logger)

	// Discord gateway, embeds, announcer.
	discordSession, err := discord.NewSession(cfg.BotToken)
	if err != nil {
		pool.Close()
		return nil, err
	}
	embeds := discord.NewEmbedBuilder(discord.Style{
		ColorPrimary: cfg.ColorPrimary,
		ColorError:   cfg.ColorError,
		EmojiStar:    cfg.EmojiStar,
		FooterText:   cfg.FooterText,
	})
	announcer := discord.NewChannelAnnouncer(discordSession, cfg.ReviewChannelID, embeds)

	repo := postgres.NewReviewRepository(pool)
	reviewService := service.NewReviewService(sessions, repo, provider, announcer, eventProducer, logger)

	app.bot = discord.NewBot(discordSession, reviewService, embeds, cfg.GuildID, logger)

	// Health checks for the ops surface.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	if app.producer != nil {
		healthHandler.Register("kafka", func(ctx context.Context) error {
			return app.producer.Ping(ctx)
		})
	}

	router := handler.NewRouter(reviewService, healthHandler, logger)
	app.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// Run connects to Discord, starts the ops HTTP server, and blocks until the
// context is canceled or a component fails.
func (a *App) Run(ctx context.Context) error {
	if a.memorySweep != nil {
		sweepCtx, cancel := context.WithCancel(context.Background())
		a.sweeperStop = cancel
		go a.memorySweep.StartSweeper(sweepCtx, a.sessionSweep, a.logger)
	}

	if err := a.bot.Start(); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.shutdown()
		return err
	}

	return a.shutdown()
}

// shutdown stops components in order: gateway first so no new interactions
// arrive, then the HTTP server drains, then the producer and pool close.
func (a *App) shutdown() error {
	var errs []error

	if a.sweeperStop != nil {
		a.sweeperStop()
	}

	if err := a.bot.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("close discord gateway: %w", err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close kafka producer: %w", err))
		}
	}

	a.pool.Close()
	a.logger.Info("shutdown complete")

	return errors.Join(errs...)
}
