package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"newsdesk/internal/config"
	"newsdesk/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	log *zap.Logger
	cfg *config.Config

	flagStore       string
	flagDatabaseURL string
	flagBadgerPath  string
	flagRedisAddr   string
	flagUploadDir   string
	flagAPIURL      string
	flagLogLevel    string
	flagDev         bool
)

var rootCmd = &cobra.Command{
	Use:           "newsdesk",
	Short:         "newsdesk - a news publishing backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		applyFlags(cmd, loaded)
		loaded.Normalize()
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		log, err = logger.New(cfg.LogLevel, cfg.Development)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("store") {
		c.Store = flagStore
	}
	if flags.Changed("database-url") {
		c.DatabaseURL = flagDatabaseURL
	}
	if flags.Changed("badger") {
		c.BadgerPath = flagBadgerPath
	}
	if flags.Changed("redis") {
		c.RedisAddr = flagRedisAddr
	}
	if flags.Changed("uploads") {
		c.UploadDir = flagUploadDir
	}
	if flags.Changed("api") {
		c.APIURL = flagAPIURL
	}
	if flags.Changed("log-level") {
		c.LogLevel = flagLogLevel
	}
	if flags.Changed("dev") {
		c.Development = flagDev
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagStore, "store", config.StorePostgres, "Article store: postgres or badger")
	pf.StringVar(&flagDatabaseURL, "database-url", "", "PostgreSQL connection URL")
	pf.StringVar(&flagBadgerPath, "badger", "./badger-data", "Path to BadgerDB data directory")
	pf.StringVar(&flagRedisAddr, "redis", "", "Address of Redis server (enables URL imports)")
	pf.StringVar(&flagUploadDir, "uploads", "uploads", "Directory for uploaded images")
	pf.StringVar(&flagAPIURL, "api", "http://localhost:3001", "Base URL of the newsdesk API")
	pf.StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	pf.BoolVar(&flagDev, "dev", false, "Human readable development logging")

	rootCmd.AddCommand(serveCmd, migrateCmd, importCmd, statusCmd)
	rootCmd.AddCommand(listCmd, showCmd, postCmd, deleteCmd, categoriesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
