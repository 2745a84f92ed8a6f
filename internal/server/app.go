// Package server initializes and runs the translation server: it wires the
// database, repositories, encryption envelope, dispatcher, and HTTP surface,
// and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/etranslation/server/internal/logging"
	"github.com/etranslation/server/internal/server/config"
	"github.com/etranslation/server/internal/server/dispatcher"
	"github.com/etranslation/server/internal/server/envelope"
	"github.com/etranslation/server/internal/server/httpapi"
	"github.com/etranslation/server/internal/server/lens"
	"github.com/etranslation/server/internal/server/repositories/repomanager"
	"github.com/etranslation/server/internal/server/services"
	"github.com/etranslation/server/internal/server/transport"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	dispatcher *dispatcher.Dispatcher
	handler    *httpapi.Handler
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	key, err := cfg.EncryptionKey()
	if err != nil {
		return nil, err
	}
	env, err := envelope.New(key)
	if err != nil {
		return nil, err
	}

	repos := repomanager.NewPostgresRepositoryManager()
	documentLens := lens.NewTextLens()

	sender := transport.NewClient(transport.Config{
		Endpoint:           cfg.AuthorityEndpoint,
		Application:        cfg.AuthorityApplication,
		Password:           cfg.AuthorityPassword,
		Domain:             cfg.AuthorityDomain,
		SuccessCallbackURL: cfg.SuccessCallbackURL,
		ErrorCallbackURL:   cfg.ErrorCallbackURL,
		Timeout:            cfg.SendTimeout,
	}, logger)

	documents := services.NewDocumentService(db, repos, env, documentLens, logger)
	callbacks := services.NewCallbackService(db, repos, env, logger)

	d := dispatcher.New(db, repos, env, sender, logger,
		cfg.BatchBudget, cfg.FailureCooldown, cfg.MaxFailureCount)

	handler := httpapi.NewHandler(documents, callbacks, cfg.Languages, logger)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		dispatcher: d,
		handler:    handler,
	}, nil
}

// Run starts the HTTP server and the dispatch schedule, and blocks until the
// context is cancelled or a termination signal arrives. In-flight requests
// get shutdownTimeout to finish.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	defer app.db.Close()

	if app.config.MigrateDatabase {
		repos := repomanager.NewPostgresRepositoryManager()
		if err := repos.RunMigrations(ctx, app.db); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
		app.logger.Info(ctx, "database migrations applied")
	}

	e := httpapi.NewServer(app.handler, app.logger)

	c, err := app.dispatcher.Schedule(ctx, app.config.DispatchPeriod)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		app.logger.Info(ctx, "starting server", "addr", app.config.EndpointAddr)
		if err := e.Start(app.config.EndpointAddr); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		c.Start()
		<-ctx.Done()

		app.logger.Info(ctx, "shutting down")
		<-c.Stop().Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
