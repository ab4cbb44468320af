package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sheikh-saqib/banking-ledger/internal/models"
)

// parseAccountSeed parses "id:owner:balance", e.g. "acc-1:usr-1:1000".
func parseAccountSeed(s string) (models.Account, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return models.Account{}, fmt.Errorf("account %q must look like id:owner:balance", s)
	}
	balance, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return models.Account{}, fmt.Errorf("account %q: invalid balance: %w", s, err)
	}
	return models.Account{ID: parts[0], OwnerID: parts[1], Balance: balance}, nil
}
