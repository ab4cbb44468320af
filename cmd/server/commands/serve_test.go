package commands

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheikh-saqib/banking-ledger/internal/handler"
	"github.com/sheikh-saqib/banking-ledger/internal/ledger"
	"github.com/sheikh-saqib/banking-ledger/internal/middleware"
	"github.com/sheikh-saqib/banking-ledger/internal/models"
	"github.com/sheikh-saqib/banking-ledger/internal/storage/memory"
)

func TestRouterEndToEnd(t *testing.T) {
	store := memory.NewMemoryLedgerStore()
	require.NoError(t, store.AddAccount(models.Account{ID: "A", OwnerID: "usr-1", Balance: 1000}))
	require.NoError(t, store.AddAccount(models.Account{ID: "B", OwnerID: "usr-2", Balance: 500}))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := newRouter(ledger.NewLedger(store, store, ledger.WithLogger(logger)), logger)

	call := func(method, url, owner, body string) *httptest.ResponseRecorder {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		req := httptest.NewRequest(method, url, r)
		req.Header.Set("Content-Type", "application/json")
		if owner != "" {
			req.Header.Set(middleware.OwnerHeader, owner)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := call(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(http.MethodPost, "/v1/transactions/transfer", "usr-1", `{"account_id":"A","recipient_account_id":"B","amount":101}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var posted models.TransactionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &posted))

	w = call(http.MethodGet, "/v1/transactions/"+posted.ID, "usr-1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got models.TransactionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "A", got.AccountID)
	assert.Equal(t, "B", got.RecipientID)
	assert.Equal(t, int64(101), got.Amount)
	assert.Equal(t, models.TransactionTransfer, got.TransactionType)

	w = call(http.MethodGet, "/v1/accounts/A/balance", "usr-1", "")
	assert.JSONEq(t, `{"account_id":"A","balance":899}`, w.Body.String())
	w = call(http.MethodGet, "/v1/accounts/B/balance", "usr-2", "")
	assert.JSONEq(t, `{"account_id":"B","balance":601}`, w.Body.String())

	w = call(http.MethodPost, "/v1/transactions/withdraw", "usr-1", `{"account_id":"does-not-exist","amount":100}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(http.MethodGet, "/v1/transactions?transaction_type=transfer", "usr-2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list handler.ListTransactionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Transactions, 1)
	assert.Equal(t, posted.ID, list.Transactions[0].ID)

	w = call(http.MethodGet, "/v1/transactions?transaction_type=bogus", "usr-2", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = call(http.MethodGet, "/v1/categories", "usr-1", "")
	assert.JSONEq(t, `{"categories":["uncategorized"]}`, w.Body.String())

	w = call(http.MethodGet, "/v1/transactions", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
