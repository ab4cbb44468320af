package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sheikh-saqib/banking-ledger/internal/ledger"
	"github.com/sheikh-saqib/banking-ledger/internal/middleware"
	"github.com/sheikh-saqib/banking-ledger/internal/models"
)

// LedgerCommander defines the write-side operations used by TransactionHandler.
type LedgerCommander interface {
	Withdraw(ctx context.Context, req models.WithdrawRequest) (models.TransactionView, error)
	Deposit(ctx context.Context, req models.DepositRequest) (models.TransactionView, error)
	Transfer(ctx context.Context, req models.TransferRequest) (models.TransactionView, error)
}

// LedgerQuerier defines the read-side operations used by TransactionHandler.
type LedgerQuerier interface {
	GetTransactions(ctx context.Context, q models.TransactionQuery, ownerID string) ([]models.TransactionView, error)
	GetTransaction(ctx context.Context, transactionID string) (models.TransactionView, error)
	GetCategories(ctx context.Context, ownerID string) ([]string, error)
	GetBalance(ctx context.Context, accountID string) (int64, error)
}

type TransactionHandler struct {
	commands LedgerCommander
	queries  LedgerQuerier
}

type ListTransactionsResponse struct {
	Transactions []models.TransactionView `json:"transactions"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

type BalanceResponse struct {
	AccountID string `json:"account_id"`
	Balance   int64  `json:"balance"`
}

func NewTransactionHandler(commands LedgerCommander, queries LedgerQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries}
}

// Register mounts the ledger routes on rg.
func (h *TransactionHandler) Register(rg *gin.RouterGroup) {
	tx := rg.Group("/transactions")
	tx.POST("/withdraw", h.Withdraw)
	tx.POST("/deposit", h.Deposit)
	tx.POST("/transfer", h.Transfer)
	tx.GET("", h.ListTransactions)
	tx.GET("/:transactionId", h.GetTransaction)

	rg.GET("/categories", h.ListCategories)
	rg.GET("/accounts/:accountId/balance", h.GetBalance)
}

func (h *TransactionHandler) Withdraw(c *gin.Context) {
	var req models.WithdrawRequest
	if !bindAndValidate(c, &req) {
		return
	}
	view, err := h.commands.Withdraw(c.Request.Context(), req)
	if err != nil {
		respondWithLedgerError(c, err, "Failed to withdraw")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req models.DepositRequest
	if !bindAndValidate(c, &req) {
		return
	}
	view, err := h.commands.Deposit(c.Request.Context(), req)
	if err != nil {
		respondWithLedgerError(c, err, "Failed to deposit")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *TransactionHandler) Transfer(c *gin.Context) {
	var req models.TransferRequest
	if !bindAndValidate(c, &req) {
		return
	}
	view, err := h.commands.Transfer(c.Request.Context(), req)
	if err != nil {
		respondWithLedgerError(c, err, "Failed to transfer")
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)

	q, err := parseTransactionQuery(c)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	views, err := h.queries.GetTransactions(c.Request.Context(), q, ownerID)
	if err != nil {
		respondWithLedgerError(c, err, "Failed to list transactions")
		return
	}
	if views == nil {
		views = []models.TransactionView{}
	}
	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	view, err := h.queries.GetTransaction(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		respondWithLedgerError(c, err, "Failed to get transaction")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TransactionHandler) ListCategories(c *gin.Context) {
	ownerID, _ := middleware.GetOwnerID(c)

	categories, err := h.queries.GetCategories(c.Request.Context(), ownerID)
	if err != nil {
		respondWithLedgerError(c, err, "Failed to list categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	c.JSON(http.StatusOK, CategoriesResponse{Categories: categories})
}

func (h *TransactionHandler) GetBalance(c *gin.Context) {
	accountID := c.Param("accountId")
	balance, err := h.queries.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		respondWithLedgerError(c, err, "Failed to get balance")
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{AccountID: accountID, Balance: balance})
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return false
	}
	return true
}

// parseTransactionQuery reads account_id, range_from, range_to (RFC 3339) and
// transaction_type (comma separated or repeated) from the query string.
func parseTransactionQuery(c *gin.Context) (models.TransactionQuery, error) {
	q := models.TransactionQuery{AccountID: c.Query("account_id")}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"range_from", &q.RangeFrom},
		{"range_to", &q.RangeTo},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return models.TransactionQuery{}, errors.New(p.name + " must be an RFC 3339 timestamp")
		}
		*p.dst = &t
	}
	if q.RangeFrom != nil && q.RangeTo != nil && q.RangeFrom.After(*q.RangeTo) {
		return models.TransactionQuery{}, errors.New("range_from must not be after range_to")
	}

	types, err := models.ParseTransactionTypes(strings.Join(c.QueryArray("transaction_type"), ","))
	if err != nil {
		return models.TransactionQuery{}, err
	}
	q.TransactionType = types
	return q, nil
}

func respondWithLedgerError(c *gin.Context, err error, fallback string) {
	var (
		accountNotFound *ledger.AccountNotFoundError
		insufficient    *ledger.InsufficientFundsError
	)
	switch {
	case errors.As(err, &accountNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Account not found: "+accountNotFound.AccountID)
	case errors.Is(err, ledger.ErrTransactionNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Transaction not found")
	case errors.As(err, &insufficient):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Insufficient funds")
	case errors.Is(err, ledger.ErrBalanceOverflow):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Balance out of range")
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrSameAccount):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrOwnerRequired):
		middleware.RespondWithError(c, http.StatusUnauthorized, err.Error())
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}
