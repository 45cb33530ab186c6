package main

import (
	"fmt"
	"os"

	"caisse/internal/config"
	"caisse/internal/database"
	"caisse/internal/logger"
	"caisse/internal/repository"
	"caisse/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Version = "dev"

var envFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "caissectl",
		Short:         "Operator tooling for the caisse ledger and outbox",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "configs/.env", "environment file")

	rootCmd.AddCommand(balancesCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(transactionsCmd())
	rootCmd.AddCommand(outboxCmd())
	rootCmd.AddCommand(idCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every command needs to reach the store.
type env struct {
	db     *gorm.DB
	logger *zap.Logger
}

func openEnv() (*env, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	log, err := logger.New("warn", cfg.GinMode)
	if err != nil {
		return nil, err
	}
	db, err := database.NewConnection(cfg.DBDriver, cfg.DSN(), log)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &env{db: db, logger: log}, nil
}

func (e *env) ledger() service.LedgerService {
	outboxRepo := repository.NewOutboxRepository(e.db)
	return service.NewLedgerService(
		repository.NewTransactionManager(e.db),
		repository.NewLedgerRepository(e.db),
		service.NewOutboxPublisher(outboxRepo, nil),
		e.logger,
	)
}

func (e *env) close() {
	if sqlDB, err := e.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = e.logger.Sync()
}
