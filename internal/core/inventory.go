package core

import (
	"sort"
	"time"

	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

// ScopeAllHubs selects every hub when passed as the hub scope of an
// inventory computation.
const ScopeAllHubs = "all"

// InventoryMetrics is the valuation of one product within a hub scope.
// Value is cost basis (receipt price), not market value. AgeDays is the
// quantity-weighted mean age of the remaining stock, rounded to the nearest
// whole day, zero when nothing remains.
type InventoryMetrics struct {
	Qty     decimal.Decimal `json:"qty"`
	Value   decimal.Decimal `json:"value"`
	AgeDays int             `json:"age_days"`
}

// batch is one cost layer: stock received at a specific date and unit cost,
// consumed oldest-first.
type batch struct {
	remaining decimal.Decimal
	unitCost  decimal.Decimal
	received  store.Date
}

// ComputeInventoryMetrics replays the product's receipt and consumption
// history within hubScope (a hub id, or ScopeAllHubs) against an ordered
// batch ledger:
//
//  1. each matching consignment line opens a batch; batches sort by receive
//     date ascending, which fixes the FIFO consumption order,
//  2. every matching sale line drains batches oldest-first, capped at each
//     batch's remainder; excess demand is dropped, stock never goes negative,
//  3. supplier returns drain the same way (customer returns do not touch
//     hub stock),
//  4. remaining layers aggregate into quantity, cost-basis value, and
//     weighted age as of asOf.
//
// Lines with dangling consignment/sale references are skipped, so a
// partially-synced snapshot under-counts instead of failing.
func ComputeInventoryMetrics(s *store.Snapshot, hubScope, productID string, asOf time.Time) InventoryMetrics {
	var batches []batch
	for _, cl := range s.ConsignmentLines {
		if cl.ProductID != productID || !cl.QtyL.IsPositive() {
			continue
		}
		c, ok := s.Consignment(cl.ConsignmentID)
		if !ok || (hubScope != ScopeAllHubs && c.ToHubID != hubScope) {
			continue
		}
		batches = append(batches, batch{remaining: cl.QtyL, unitCost: cl.UnitPrice, received: c.ReceiveDate})
	}
	sort.SliceStable(batches, func(i, j int) bool { return batches[i].received < batches[j].received })

	for _, sl := range s.SaleLines {
		if sl.ProductID != productID {
			continue
		}
		sale, ok := s.Sale(sl.SaleID)
		if !ok || (hubScope != ScopeAllHubs && sale.HubID != hubScope) {
			continue
		}
		consume(batches, sl.QtyL)
	}
	for _, r := range s.Returns {
		if r.Type != store.ReturnTypeSupplier || r.ProductID != productID {
			continue
		}
		if hubScope != ScopeAllHubs && r.HubID != hubScope {
			continue
		}
		consume(batches, r.Qty)
	}

	var m InventoryMetrics
	weightedAge := decimal.Zero
	for _, b := range batches {
		m.Qty = m.Qty.Add(b.remaining)
		m.Value = m.Value.Add(b.remaining.Mul(b.unitCost))
		if b.remaining.IsPositive() && b.received != "" {
			days := b.received.DaysUntil(asOf)
			weightedAge = weightedAge.Add(b.remaining.Mul(decimal.NewFromInt(int64(days))))
		}
	}
	if m.Qty.IsPositive() {
		m.AgeDays = int(weightedAge.Div(m.Qty).Round(0).IntPart())
	}
	return m
}

// HubStock is one hub's cell in the stock grid.
type HubStock struct {
	HubID   string           `json:"hub_id"`
	HubName string           `json:"hub_name"`
	Metrics InventoryMetrics `json:"metrics"`
}

// StockRow is one product's row of the stock grid: per-hub metrics plus the
// all-hubs aggregate column.
type StockRow struct {
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	Hubs        []HubStock       `json:"hubs"`
	All         InventoryMetrics `json:"all"`
}

// BuildStockLevels values every product at every hub, row per product, in
// snapshot order.
func BuildStockLevels(s *store.Snapshot, asOf time.Time) []StockRow {
	rows := make([]StockRow, 0, len(s.Products))
	for _, p := range s.Products {
		row := StockRow{
			ProductID:   p.ID,
			ProductName: p.Name,
			All:         ComputeInventoryMetrics(s, ScopeAllHubs, p.ID, asOf),
		}
		for _, h := range s.Hubs {
			row.Hubs = append(row.Hubs, HubStock{
				HubID:   h.ID,
				HubName: h.Name,
				Metrics: ComputeInventoryMetrics(s, h.ID, p.ID, asOf),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// consume drains qty from the batches oldest-first. Batches never go
// negative; demand beyond the total on hand is silently dropped.
func consume(batches []batch, qty decimal.Decimal) {
	for i := range batches {
		if !qty.IsPositive() {
			return
		}
		take := decimal.Min(batches[i].remaining, qty)
		batches[i].remaining = batches[i].remaining.Sub(take)
		qty = qty.Sub(take)
	}
}
