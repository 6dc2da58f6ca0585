package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"

	"newsdesk/internal/config"
	"newsdesk/internal/model"
	"newsdesk/internal/queue"
	"newsdesk/internal/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	importCategory string
	importAuthor   string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Store != config.StorePostgres {
			log.Info("Nothing to migrate", zap.String("store", cfg.Store))
			return nil
		}
		if err := store.Migrate(cfg.DatabaseURL); err != nil {
			return err
		}
		log.Info("Migrations applied")
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [url]",
	Short: "Queue a web page to be imported as an article",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := url.ParseRequestURI(args[0])
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%q is not an http(s) url", args[0])
		}

		q, err := openQueue()
		if err != nil {
			return err
		}
		defer q.Close()

		job := model.NewImportJob(u.String(), importCategory, importAuthor)
		if err := q.Enqueue(context.Background(), &job); err != nil {
			return fmt.Errorf("queue import: %w", err)
		}

		log.Info("Import queued",
			zap.String("id", job.ID.String()),
			zap.String("url", job.URL))
		fmt.Println(job.ID)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Show the status of an import job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid job id: %w", err)
		}

		q, err := openQueue()
		if err != nil {
			return err
		}
		defer q.Close()

		job, err := q.Get(context.Background(), id)
		if errors.Is(err, queue.ErrJobNotFound) {
			return fmt.Errorf("no import job %s", id)
		} else if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(job)
	},
}

func init() {
	importCmd.Flags().StringVar(&importCategory, "category", "", "Category of the imported article")
	importCmd.Flags().StringVar(&importAuthor, "author", "", "Author of the imported article (default: the page byline)")
}

func openQueue() (*queue.RedisQueue, error) {
	if cfg.RedisAddr == "" {
		return nil, errors.New("REDIS_ADDR or --redis is required for imports")
	}
	return queue.NewRedisQueue(cfg.RedisAddr)
}
