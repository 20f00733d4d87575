package core

import (
	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

// OutstandingBalance computes the net amount a customer owes: sale line
// totals debit, payments credit, customer returns credit. REFUND payments
// debit the balance: money already handed back re-opens the receivable
// under the reporting convention this business runs on; the behavior is
// pinned by a dedicated test because the sign is easy to get backwards.
//
// The computation is a plain sum, so it is invariant under any reordering
// of the underlying collections. Positive means the customer owes the
// business; zero or negative means settled or in credit.
func OutstandingBalance(s *store.Snapshot, customerID string) decimal.Decimal {
	total := decimal.Zero
	for _, sale := range s.Sales {
		if sale.CustomerID != customerID {
			continue
		}
		for _, sl := range s.SaleLines {
			if sl.SaleID == sale.ID {
				total = total.Add(sl.QtyL.Mul(sl.UnitPrice))
			}
		}
	}
	for _, p := range s.Payments {
		if p.CustomerID != customerID {
			continue
		}
		if p.Type == store.PaymentTypeRefund {
			total = total.Add(p.Amount)
		} else {
			total = total.Sub(p.Amount)
		}
	}
	for _, r := range s.Returns {
		if r.CustomerID != customerID || r.Type != store.ReturnTypeCustomer {
			continue
		}
		total = total.Sub(r.Qty.Mul(r.UnitPriceAtReturn))
	}
	return total
}

// TotalReceivables sums the positive outstanding balances across all
// customers. Customers in credit do not offset others' dues.
func TotalReceivables(s *store.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, c := range s.Customers {
		if out := OutstandingBalance(s, c.ID); out.IsPositive() {
			total = total.Add(out)
		}
	}
	return total
}
