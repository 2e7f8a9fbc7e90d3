package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"referralflow/internal/api"
	"referralflow/internal/api/handler/v1handler"
	"referralflow/internal/config"
	"referralflow/internal/pipeline"
	"referralflow/internal/worker"
	"referralflow/pkg/logger"
	"referralflow/pkg/metrics"
	"referralflow/pkg/storage/postgres"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// setupQueue returns the enqueuer used by the ingress routes and a function
// draining it on shutdown.
func setupQueue(ctx context.Context, cfg *config.Config, strg *postgres.PgSQL,
	runner pipeline.Runner) (pipeline.Enqueuer, func(ctx context.Context) error) {
	switch cfg.Queue.Driver {
	case pipeline.QueueMemory, "":
		q := pipeline.NewLocalQueue(runner)

		return q, q.Shutdown
	case pipeline.QueueRiver:
		// the client outlives the signal context and is stopped explicitly
		client, err := worker.Start(context.WithoutCancel(ctx), strg.Pool, runner, worker.NewOptions(cfg))
		if err != nil {
			logger.Fatal(ctx, "could not start river worker", zap.Error(err))
		}

		return pipeline.NewRiverQueue(strg), client.Stop
	default:
		logger.Fatal(ctx, "unknown queue driver", zap.String("driver", cfg.Queue.Driver))

		return nil, nil
	}
}

func serveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Starts API server and background pipeline execution",
		Run: func(cmd *cobra.Command, args []string) {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if _, err := metrics.Setup(prometheus.DefaultRegisterer); err != nil {
				logger.Fatal(ctx, "could not set up metrics", zap.Error(err))
			}

			var strg *postgres.PgSQL
			if needsPostgres(cfg) {
				var closeStrg func()
				strg, closeStrg = getPostgres(ctx, cfg)
				defer closeStrg()
			}

			orchestrator, err := newOrchestrator(ctx, cfg, strg, true)
			if err != nil {
				logger.Fatal(ctx, "could not create pipeline", zap.Error(err))
			}

			enqueuer, stopQueue := setupQueue(ctx, cfg, strg, orchestrator)

			deps := v1handler.Deps{Enqueuer: enqueuer}
			if strg != nil {
				deps.Storage = strg
			}
			server, err := api.NewServer(api.Deps{Deps: deps}, api.NewOptions(cfg))
			if err != nil {
				logger.Fatal(ctx, "could not create webserver", zap.Error(err))
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info(ctx, "starting webserver...", zap.String("addr", server.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("could not start webserver: %w", err)
				}

				return nil
			})
			g.Go(func() error {
				// wait for interrupt or a failed listener
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
				defer cancel()

				logger.Info(ctx, "stopping webserver...")
				var errs []error
				if err := server.Shutdown(shutdownCtx); err != nil {
					errs = append(errs, fmt.Errorf("could not stop webserver: %w", err))
				}
				logger.Info(ctx, "draining pipeline queue...", zap.String("driver", cfg.Queue.Driver))
				if err := stopQueue(shutdownCtx); err != nil {
					errs = append(errs, fmt.Errorf("could not drain queue: %w", err))
				}

				return errors.Join(errs...)
			})

			if err := g.Wait(); err != nil {
				logger.Error(ctx, "server stopped with error", zap.Error(err))
			}
		},
	}

	return cmd
}
