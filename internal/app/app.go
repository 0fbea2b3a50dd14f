package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/worldexplorer/backend/database"
	"github.com/worldexplorer/backend/internal/config"
	"github.com/worldexplorer/backend/internal/eventbus"
	"github.com/worldexplorer/backend/internal/hub"
	"github.com/worldexplorer/backend/internal/middleware"
)

type App struct {
	config   *config.Config
	logger   *slog.Logger
	pool     *pgxpool.Pool
	hub      *hub.Hub
	relayBus eventbus.Bus
}

// Returns a new instance of the event service with a connection
// instance to the database pool and the broadcast hub it will fan
// events out through.
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
		hub:    hub.New(logger, cfg.HubConfig.SubscriberBuffer),
	}

	// The RabbitMQ relay is optional; without an address the live
	// stream is served over SSE only.
	if cfg.RabbitMQConfig.RabbitMQAddress != "" {
		amqpURI := fmt.Sprintf("amqp://%s:%s@%s:%d/",
			cfg.RabbitMQConfig.RabbitMQUser,
			cfg.RabbitMQConfig.RabbitMQPass,
			cfg.RabbitMQConfig.RabbitMQAddress,
			cfg.RabbitMQConfig.RabbitMQPort,
		)
		bus, err := eventbus.NewRabbitMQBus(amqpURI, cfg.RabbitMQConfig.Exchange, eventbus.FanoutExchangeType)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize RabbitMQ event relay: %w", err)
		}
		app.relayBus = bus
	}

	return app, nil
}

// Starts the event service server
func (a *App) Start(ctx context.Context) error {

	database.RunGooseMigrations(a.logger, a.pool, "migrations/events")

	if a.relayBus != nil {
		relay := eventbus.NewRelay(a.relayBus, a.logger)
		go relay.Run(ctx, a.hub)
		defer a.relayBus.Close()
	}

	allowedOrigins := []string{
		"http://localhost:3000",
		"https://explorer.worldexplorer.io",
	}

	middlewares := middleware.CreateStack(
		middleware.Logging(a.logger),
		middleware.CORSMiddleware(allowedOrigins),
	)
	router := a.loadRoutes()

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.config.EventServiceConfig.Address, a.config.EventServiceConfig.Port),
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

	a.logger.Info("event service running",
		slog.String("address", a.config.EventServiceConfig.Address),
		slog.Int("port", a.config.EventServiceConfig.Port),
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
