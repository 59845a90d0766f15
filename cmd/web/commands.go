package main

import (
	"os/signal"
	"syscall"

	"jobportal_backend/database"
	"jobportal_backend/internal/app"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:           "web",
	Short:         "Job portal backend: applications, interviews, reminders, chat",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// --- serve ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, websocket hub and background workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db)

		a, err := app.New(cfg, db)
		if err != nil {
			return err
		}
		return a.Run(ctx)
	},
}

// --- reminders ---

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Run only the interview reminder worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		once, _ := cmd.Flags().GetBool("once")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer closeDB(db)

		a, err := app.New(cfg, db)
		if err != nil {
			return err
		}

		if once {
			sent, err := a.Reminders().RunOnce(ctx)
			if err != nil {
				return err
			}
			logger.Info("reminder pass finished", "sent", sent)
			return nil
		}
		a.Reminders().Start(ctx)
		return nil
	},
}

// --- migrate ---

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		logger.Init(cfg.Server.Env)

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer closeDB(db)
		return database.AutoMigrate(db)
	},
}

func init() {
	remindersCmd.Flags().Bool("once", false, "run a single reminder pass and exit")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(remindersCmd)
	rootCmd.AddCommand(migrateCmd)
}

func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg := config.LoadConfig()
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	db, err := app.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("failed to close database", "error", err)
	}
}
