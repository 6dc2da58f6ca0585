package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/news"
	"newsdesk/internal/queue"
	"newsdesk/internal/server"
	"newsdesk/internal/store"
	"newsdesk/internal/upload"
	"newsdesk/internal/worker"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, the import worker and the upload sweeper",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("port") {
			cfg.Port = servePort
		}

		// Setup Signal Handling (Ctrl+C)
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		uploads, err := upload.NewStorage(cfg.UploadDir)
		if err != nil {
			return err
		}
		articles := news.NewService(st, uploads, log)

		if cfg.RedisAddr != "" {
			q, err := queue.NewRedisQueue(cfg.RedisAddr)
			if err != nil {
				return err
			}
			defer q.Close()

			workerCtx, cancelWorker := context.WithCancel(ctx)
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				worker.NewWorker(q, articles, log).Start(workerCtx)
			}()
			// Deferred after the closes above, so it runs before them.
			defer func() {
				cancelWorker()
				wg.Wait()
			}()
		} else {
			log.Info("REDIS_ADDR not set, URL imports disabled")
		}

		if cfg.SweepSchedule != "" {
			sweeper := worker.NewSweeper(uploads, st, cfg.SweepGrace, log)
			if err := sweeper.Start(ctx, cfg.SweepSchedule); err != nil {
				return err
			}
		}

		srv := server.NewServer(articles, uploads, log, server.Options{
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			CORSOrigins:  cfg.CORSOrigins,
		})

		errc := make(chan error, 1)
		go func() { errc <- srv.Start(cfg.Port) }()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Error("Graceful shutdown failed", zap.Error(err))
			return err
		}
		log.Info("Goodbye!")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "3001", "Port to listen on")
}

// openStore opens the configured article store, migrating Postgres first
// when enabled.
func openStore(ctx context.Context) (store.Store, error) {
	if cfg.Store == config.StoreBadger {
		st, err := store.NewBadgerStore(cfg.BadgerPath)
		if err != nil {
			return nil, err
		}
		log.Info("Using badger store", zap.String("path", cfg.BadgerPath))
		return st, nil
	}

	if cfg.MigrateOnStart {
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}
	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("Using postgres store")
	return st, nil
}
