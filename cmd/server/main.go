// @title                       Field Sales API
// @version                     1.0
// @description                 Visit tracking, reporting and order lookups for the field sales team.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/hapl/fieldsales/docs"
	"github.com/hapl/fieldsales/internal/api"
	"github.com/hapl/fieldsales/internal/api/handler"
	"github.com/hapl/fieldsales/internal/api/metrics"
	"github.com/hapl/fieldsales/internal/core/service"
	"github.com/hapl/fieldsales/internal/core/visibility"
	mongostore "github.com/hapl/fieldsales/internal/infrastructure/db/mongo"
	redisstore "github.com/hapl/fieldsales/internal/infrastructure/db/redis"
	"github.com/hapl/fieldsales/internal/pkg/config"
	"github.com/hapl/fieldsales/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "fieldsales",
		Short:         "Field sales visit tracking API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(indexesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var ensureIndexes bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, ensureIndexes)
		},
	}
	cmd.Flags().BoolVar(&ensureIndexes, "ensure-indexes", false, "create missing collection indexes before serving")
	return cmd
}

func indexesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indexes",
		Short: "Create missing collection indexes and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			client, db, err := mongostore.Connect(cmd.Context(), mongoConfig(cfg))
			if err != nil {
				return err
			}
			defer disconnect(client, log)

			if err := ensureAllIndexes(cmd.Context(), db); err != nil {
				return err
			}
			log.Info().Str("database", cfg.Mongo.Database).Msg("indexes ensured")
			return nil
		},
	}
}

// bootstrap loads .env (when present) and the environment, then initialises the logger.
func bootstrap(ctx context.Context) (*config.Config, zerolog.Logger, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "fieldsales",
	})
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("failed to read .env file")
	}
	return cfg, log, nil
}

func runServer(ctx context.Context, withIndexes bool) error {
	cfg, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}

	client, db, err := mongostore.Connect(ctx, mongoConfig(cfg))
	if err != nil {
		return err
	}
	defer disconnect(client, log)

	rdb, err := redisstore.Connect(ctx, redisstore.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close failed")
		}
	}()

	if withIndexes {
		if err := ensureAllIndexes(ctx, db); err != nil {
			return err
		}
	}

	e := api.NewRouter(buildServices(cfg, db, rdb), api.Options{
		Logger: log,
		Checks: map[string]handler.Check{
			"mongodb": func(ctx context.Context) error { return client.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return redisstore.Ping(ctx, rdb, 2*time.Second) },
		},
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func buildServices(cfg *config.Config, db *mongo.Database, rdb *redis.Client) api.Services {
	authRepo := mongostore.NewAuthRepository(db)
	visitRepo := mongostore.NewVisitRepository(db)
	sampleRepo := mongostore.NewSampleRepository(db)
	orderRepo := mongostore.NewOrderRepository(db)
	sessions := redisstore.NewSessionStore(rdb)

	filter := visibility.NewFilter(authRepo, logger.Component("visibility"),
		visibility.WithObserver(func(o visibility.Outcome) {
			metrics.VisibilityDecisionsTotal.WithLabelValues(string(o)).Inc()
		}))

	return api.Services{
		Auth:    service.NewAuthService(authRepo, sessions, cfg.JWTSecret, cfg.AccessTokenTTL, logger.Component("auth")),
		Visits:  service.NewVisitService(visitRepo, filter, logger.Component("visits")),
		Reports: service.NewReportService(visitRepo, sampleRepo, filter, logger.Component("reports")),
		Orders:  service.NewOrderService(orderRepo, sampleRepo, logger.Component("orders")),
	}
}

func ensureAllIndexes(ctx context.Context, db *mongo.Database) error {
	return mongostore.EnsureIndexes(ctx,
		mongostore.NewAuthRepository(db),
		mongostore.NewVisitRepository(db),
		mongostore.NewSampleRepository(db),
		mongostore.NewOrderRepository(db),
	)
}

func mongoConfig(cfg *config.Config) mongostore.Config {
	return mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.Mongo.Timeout,
		AppName:  "fieldsales",
	}
}

func disconnect(client *mongo.Client, log zerolog.Logger) {
	if err := mongostore.Disconnect(client); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
}
