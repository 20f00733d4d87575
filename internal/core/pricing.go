// Package core implements the derived-view engines of the distributor
// ledger: pricing resolution, FIFO inventory valuation, customer
// receivables, ledger statements, and the consolidated report. Every
// function here is a pure computation over one store.Snapshot revision:
// no I/O, no mutation, no locking, and no errors for data-quality issues
// (dangling references are skipped, bad numerics are treated as zero).
package core

import (
	"slices"

	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

// LatestPrice resolves the unit price of a product as of a date: the entry
// with the greatest effective date not after asOf wins. Returns zero when no
// entry qualifies; callers let that propagate rather than failing.
func LatestPrice(s *store.Snapshot, productID string, asOf store.Date) decimal.Decimal {
	var (
		best     decimal.Decimal
		bestDate store.Date
		found    bool
	)
	for _, e := range s.PriceHistory {
		if e.ProductID != productID || e.EffectiveDate > asOf {
			continue
		}
		if !found || e.EffectiveDate > bestDate {
			best = e.UnitPrice
			bestDate = e.EffectiveDate
			found = true
		}
	}
	return best
}

// PriceDates returns the distinct effective dates present in the price
// history, ascending. Empty dates are dropped.
func PriceDates(s *store.Snapshot) []store.Date {
	seen := make(map[store.Date]bool)
	var dates []store.Date
	for _, e := range s.PriceHistory {
		if e.EffectiveDate == "" || seen[e.EffectiveDate] {
			continue
		}
		seen[e.EffectiveDate] = true
		dates = append(dates, e.EffectiveDate)
	}
	slices.Sort(dates)
	return dates
}
