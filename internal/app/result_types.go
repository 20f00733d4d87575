package app

import (
	"oilhub/internal/core"

	"github.com/shopspring/decimal"
)

// StatementResult is a customer's ledger plus its closing position.
type StatementResult struct {
	CustomerID     string             `json:"customer_id"`
	CustomerName   string             `json:"customer_name"`
	Entries        []core.LedgerEntry `json:"entries"`
	ClosingBalance decimal.Decimal    `json:"closing_balance"`
}
