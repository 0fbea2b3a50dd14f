package countryapp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/worldexplorer/backend/database"
	"github.com/worldexplorer/backend/internal/cache"
	"github.com/worldexplorer/backend/internal/config"
	"github.com/worldexplorer/backend/internal/middleware"
	"github.com/worldexplorer/backend/internal/publisher"
)

type App struct {
	config    *config.Config
	logger    *slog.Logger
	pool      *pgxpool.Pool
	publisher *publisher.EventPublisher
	cache     *cache.CountryCache
}

// Returns a new instance of the country service with a connection
// instance to the database pool, the event publisher and, when
// configured, the Redis read cache.
func New(logger *slog.Logger, cfg *config.Config) (*App, error) {

	dbConfig, err := pgxpool.ParseConfig(fmt.Sprintf(
		"postgresql://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.DatabaseConfig.DatabaseUser,
		cfg.DatabaseConfig.DatabasePassword,
		cfg.DatabaseConfig.DatabaseHost,
		cfg.DatabaseConfig.DatabasePort,
		cfg.DatabaseConfig.DatabaseName,
	))
	if err != nil {
		return nil, err
	}

	dbConfig.MaxConns = cfg.DatabaseConfig.DatabasePoolMaxConnections
	dbConfig.MinConns = cfg.DatabaseConfig.DatabasePoolMinConnections
	dbConfig.MaxConnLifetime = time.Hour * time.Duration(cfg.DatabaseConfig.DatabasePoolMaxConnectionLifetime)

	connPool, err := pgxpool.NewWithConfig(context.Background(), dbConfig)
	if err != nil {
		return nil, err
	}

	app := &App{
		config: cfg,
		logger: logger,
		pool:   connPool,
		publisher: publisher.New(
			cfg.EventClientConfig.EventServiceURL,
			time.Duration(cfg.EventClientConfig.TimeoutSeconds)*time.Second,
			logger,
		),
	}

	// The read cache is optional; without a Redis address every read
	// goes straight to the database.
	if cfg.RedisConfig.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.RedisAddr,
			Password: cfg.RedisConfig.RedisPassword,
			DB:       cfg.RedisConfig.RedisDB,
		})
		ttl := time.Duration(cfg.RedisConfig.CacheTTLSeconds) * time.Second
		app.cache = cache.NewCountryCache(client, ttl, logger)
	}

	return app, nil
}

// Starts the country service server
func (a *App) Start(ctx context.Context) error {

	database.RunGooseMigrations(a.logger, a.pool, "migrations/countries")

	allowedOrigins := []string{
		"http://localhost:3000",
		"https://explorer.worldexplorer.io",
	}

	middlewares := middleware.CreateStack(
		middleware.Logging(a.logger),
		middleware.WithDBConnection(a.logger, a.pool),
		middleware.CORSMiddleware(allowedOrigins),
	)
	router := a.loadRoutes()

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.config.CountryServiceConfig.Address, a.config.CountryServiceConfig.Port),
		Handler: middlewares(router),
	}

	errCh := make(chan error, 1)

	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to listen and serve: %w", err)
		}

		close(errCh)
	}()

	a.logger.Info("country service running",
		slog.String("address", a.config.CountryServiceConfig.Address),
		slog.Int("port", a.config.CountryServiceConfig.Port),
	)

	select {
	// Wait until we receive SIGINT (ctrl+c on cli)
	case <-ctx.Done():
		break
	case err := <-errCh:
		return err
	}

	sCtx, cancel := context.WithTimeout(context.Background(), time.Second*15)
	defer cancel()

	srv.Shutdown(sCtx)

	return nil
}
