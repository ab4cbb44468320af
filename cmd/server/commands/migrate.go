package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/banking-ledger/internal/config"
	"github.com/sheikh-saqib/banking-ledger/internal/storage/postgres"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the ledger tables in PostgreSQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Storage != config.StoragePostgres {
			return errors.New("migrate needs STORAGE=postgres")
		}

		be, err := openBackend(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer be.Close()

		if err := postgres.Migrate(cmd.Context(), be.db); err != nil {
			return err
		}
		cmd.Println("schema applied")
		return nil
	},
}
