package redis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	interfaces "github.com/sheikh-saqib/banking-ledger/internal/interfaces"
	"github.com/sheikh-saqib/banking-ledger/internal/models"
)

const keyPrefix = "transaction:view:"

// ViewCache stores transaction views as JSON under "transaction:view:<id>".
// A ttl of 0 keeps keys forever.
type ViewCache struct {
	client goredis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

func NewViewCache(client goredis.Cmdable, ttl time.Duration, logger *slog.Logger) *ViewCache {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ViewCache{client: client, ttl: ttl, logger: logger}
}

func viewKey(transactionID string) string {
	return keyPrefix + transactionID
}

// Get returns (nil, false) on a miss and on any read or decode error.
func (c *ViewCache) Get(ctx context.Context, transactionID string) (*models.TransactionView, bool) {
	data, err := c.client.Get(ctx, viewKey(transactionID)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Warn("view cache read failed", "transaction_id", transactionID, "error", err)
		}
		return nil, false
	}
	var view models.TransactionView
	if err := json.Unmarshal(data, &view); err != nil {
		c.logger.Warn("view cache entry unreadable", "transaction_id", transactionID, "error", err)
		return nil, false
	}
	return &view, true
}

// Set errors are logged, not returned.
func (c *ViewCache) Set(ctx context.Context, view *models.TransactionView) {
	data, err := json.Marshal(view)
	if err != nil {
		c.logger.Warn("view cache marshal failed", "transaction_id", view.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, viewKey(view.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("view cache write failed", "transaction_id", view.ID, "error", err)
	}
}

var _ interfaces.ViewCache = (*ViewCache)(nil)
