package interfaces

import (
	"context"

	"github.com/sheikh-saqib/banking-ledger/internal/models"
)

// ViewCache holds transaction views by id. Views never change once written, so
// entries need no invalidation.
type ViewCache interface {
	Get(ctx context.Context, transactionID string) (*models.TransactionView, bool)
	Set(ctx context.Context, view *models.TransactionView)
}
