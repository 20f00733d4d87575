package core

import (
	"fmt"
	"sort"
	"strings"

	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

// LedgerEntryType tags a statement row with the business event behind it.
type LedgerEntryType string

const (
	LedgerSale    LedgerEntryType = "SALE"
	LedgerPayment LedgerEntryType = "PAYMENT"
	LedgerRefund  LedgerEntryType = "REFUND"
	LedgerReturn  LedgerEntryType = "RETURN"
)

// LedgerEntry is one row of a customer statement. RunningBalance is the
// cumulative debit-minus-credit position after this row when walking the
// statement in ascending date order.
type LedgerEntry struct {
	Date           store.Date      `json:"date"`
	Type           LedgerEntryType `json:"type"`
	Ref            string          `json:"ref"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"running_balance"`
}

// CustomerLedger merges a customer's sales, payments, refunds, and returns
// into one chronological statement with a running balance. Each sale
// collapses to a single consolidated row describing its basket; sales with
// no positive-quantity lines are omitted. The canonical order is ascending
// by date; presentation layers may reverse it, but the running balance is
// always computed on the ascending walk, whose final value equals
// OutstandingBalance for the same snapshot and customer.
func CustomerLedger(s *store.Snapshot, customerID string) []LedgerEntry {
	var entries []LedgerEntry

	for _, sale := range s.Sales {
		if sale.CustomerID != customerID {
			continue
		}
		var (
			parts []string
			total = decimal.Zero
		)
		for _, sl := range s.LinesOfSale(sale.ID) {
			if !sl.QtyL.IsPositive() {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s (%sL @ ₹%s)",
				productLabel(s, sl.ProductID), sl.QtyL.String(), sl.UnitPrice.String()))
			total = total.Add(sl.QtyL.Mul(sl.UnitPrice))
		}
		if len(parts) == 0 {
			continue
		}
		entries = append(entries, LedgerEntry{
			Date:        sale.SaleDate,
			Type:        LedgerSale,
			Ref:         sale.SaleNo,
			Description: strings.Join(parts, ", "),
			Debit:       total,
		})
	}

	for _, p := range s.Payments {
		if p.CustomerID != customerID {
			continue
		}
		if p.Type == store.PaymentTypeRefund {
			ref := p.Reference
			if ref == "" {
				ref = "Bank"
			}
			entries = append(entries, LedgerEntry{
				Date:        p.PaymentDate,
				Type:        LedgerRefund,
				Ref:         p.Mode,
				Description: fmt.Sprintf("Outward Refund (%s)", ref),
				Debit:       p.Amount,
			})
		} else {
			desc := p.Reference
			if desc == "" {
				desc = "Bank Transfer"
			}
			entries = append(entries, LedgerEntry{
				Date:        p.PaymentDate,
				Type:        LedgerPayment,
				Ref:         p.Mode,
				Description: desc,
				Credit:      p.Amount,
			})
		}
	}

	for _, r := range s.Returns {
		if r.CustomerID != customerID || r.Type != store.ReturnTypeCustomer || !r.Qty.IsPositive() {
			continue
		}
		entries = append(entries, LedgerEntry{
			Date: r.Date,
			Type: LedgerReturn,
			Ref:  "Credit",
			Description: fmt.Sprintf("Return: %s (%sL @ ₹%s)",
				productLabel(s, r.ProductID), r.Qty.String(), r.UnitPriceAtReturn.String()),
			Credit: r.Qty.Mul(r.UnitPriceAtReturn),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date < entries[j].Date })

	balance := decimal.Zero
	for i := range entries {
		balance = balance.Add(entries[i].Debit).Sub(entries[i].Credit)
		entries[i].RunningBalance = balance
	}
	return entries
}

// productLabel resolves a product name for statement text; dangling product
// references fall back to a generic label rather than failing the report.
func productLabel(s *store.Snapshot, productID string) string {
	if p, ok := s.Product(productID); ok && p.Name != "" {
		return p.Name
	}
	return "Oil"
}
