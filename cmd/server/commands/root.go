package commands

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/banking-ledger/internal/config"
	interfaces "github.com/sheikh-saqib/banking-ledger/internal/interfaces"
	"github.com/sheikh-saqib/banking-ledger/internal/models"
	"github.com/sheikh-saqib/banking-ledger/internal/storage/memory"
	"github.com/sheikh-saqib/banking-ledger/internal/storage/postgres"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Double-entry transaction ledger for personal banking",
	Long: `ledger records withdrawals, deposits and transfers as double-entry
postings and serves transaction history over HTTP.

Configuration comes from the environment (and an optional .env file):
PORT, STORAGE, DATABASE_URL, DB_DRIVER, REDIS_ADDR, REDIS_TTL,
KAFKA_BROKERS, KAFKA_TOPIC, LOG_LEVEL, LEDGER_OVERDRAFT_PROTECTION.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file to load")
	rootCmd.AddCommand(serveCmd, migrateCmd, reconcileCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(envFile)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// backend is the configured storage. db is nil for the memory store.
type backend struct {
	ledger     interfaces.LedgerStore
	accounts   interfaces.AccountStore
	addAccount func(ctx context.Context, account models.Account) error
	db         *sql.DB
}

func (b *backend) Close() {
	if b.db != nil {
		b.db.Close()
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if cfg.Storage == config.StoragePostgres {
		db, err := postgres.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		pg := postgres.NewPostgresLedgerStore(db)
		return &backend{ledger: pg, accounts: pg, addAccount: pg.AddAccount, db: db}, nil
	}

	mem := memory.NewMemoryLedgerStore()
	return &backend{
		ledger:   mem,
		accounts: mem,
		addAccount: func(_ context.Context, account models.Account) error {
			return mem.AddAccount(account)
		},
	}, nil
}
