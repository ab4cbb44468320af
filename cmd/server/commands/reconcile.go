package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sheikh-saqib/banking-ledger/internal/ledger"
)

var reconcileJSON bool

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Check every account balance against its ledger entries",
	Long: `reconcile compares balance - opening_balance with the signed sum of each
account's entries and lists every account where they differ. It exits
non-zero when any account drifts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(os.Stderr, cfg.LogLevel)

		be, err := openBackend(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer be.Close()

		svc := ledger.NewLedger(be.ledger, be.accounts, ledger.WithLogger(logger))
		discrepancies, err := svc.Reconcile(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if reconcileJSON {
			if discrepancies == nil {
				discrepancies = []ledger.Discrepancy{}
			}
			if err := json.NewEncoder(out).Encode(discrepancies); err != nil {
				return err
			}
		} else {
			for _, d := range discrepancies {
				fmt.Fprintf(out, "%s\tbalance=%d\topening=%d\tentries=%d\tdrift=%d\n",
					d.AccountID, d.Balance, d.OpeningBalance, d.EntrySum, d.Drift())
			}
		}

		if len(discrepancies) > 0 {
			return fmt.Errorf("%d account(s) out of balance", len(discrepancies))
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "all accounts reconcile")
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&reconcileJSON, "json", false, "Output discrepancies as JSON")
}
