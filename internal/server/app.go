// Package server initializes and runs the application: it wires the
// database, Redis, the token codec, the services, and the HTTP server, and
// handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/ndanilenko/passvault/internal/logging"
	"github.com/ndanilenko/passvault/internal/server/auth"
	"github.com/ndanilenko/passvault/internal/server/config"
	"github.com/ndanilenko/passvault/internal/server/httpapi"
	"github.com/ndanilenko/passvault/internal/server/rate"
	"github.com/ndanilenko/passvault/internal/server/repositories/repomanager"
	"github.com/ndanilenko/passvault/internal/server/services"
)

// App owns the long-lived resources of the server process.
type App struct {
	config *config.Config
	logger logging.Logger

	db     *sql.DB
	redis  *redis.Client
	server *httpapi.Server
}

// NewApp builds a fully wired App: database handle, migrations, Redis
// client, token codec, services, and the HTTP surface.
func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: c.RedisAddr})

	codec := auth.NewCodec(c.TokenIssuer, []byte(c.SecretKey),
		c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration)

	accountService := services.NewAccountService(db, manager)
	sessionService := services.NewSessionService(db, manager, codec)
	secretService := services.NewSecretService(db, manager, c)
	limiter := rate.New(redisClient, c.LoginAttemptLimit, c.LoginAttemptCooldown)

	server := httpapi.NewServer(accountService, sessionService, secretService, limiter, codec, logger)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		redis:  redisClient,
		server: server,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "http server listening", "addr", app.config.EndpointAddrHTTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server error", "error", err)
		cancelFunc()
	}
}

// Run starts the HTTP server and blocks until a termination signal arrives
// or the server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.redis.Close(); err != nil {
		app.logger.Error(ctx, "redis close error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "app stopped")
}
