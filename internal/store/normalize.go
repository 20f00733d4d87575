package store

import "github.com/shopspring/decimal"

// identified is satisfied by every record type; Normalize dedupes on it.
type identified interface {
	recordID() string
}

func (h Hub) recordID() string             { return h.ID }
func (c Customer) recordID() string        { return c.ID }
func (p Product) recordID() string         { return p.ID }
func (e PriceEntry) recordID() string      { return e.ID }
func (c Consignment) recordID() string     { return c.ID }
func (l ConsignmentLine) recordID() string { return l.ID }
func (s Sale) recordID() string            { return s.ID }
func (l SaleLine) recordID() string        { return l.ID }
func (p Payment) recordID() string         { return p.ID }
func (r ReturnRecord) recordID() string    { return r.ID }

// dedupe keeps one record per id, last write wins, preserving the insertion
// order of the first occurrence. Records with an empty id are dropped.
func dedupe[T identified](in []T) []T {
	idx := make(map[string]int, len(in))
	out := make([]T, 0, len(in))
	for _, rec := range in {
		id := rec.recordID()
		if id == "" {
			continue
		}
		if i, ok := idx[id]; ok {
			out[i] = rec
			continue
		}
		idx[id] = len(out)
		out = append(out, rec)
	}
	return out
}

// clamp returns d, or zero when d is negative.
func clamp(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Normalize applies the load-boundary rules to a snapshot read from the
// persistence collaborator: duplicate ids resolve last-write-wins, negative
// numerics clamp to zero, and optional enum-ish fields get their defaults.
// The engines can then assume a well-formed snapshot and never guard against
// missing or malformed values beyond skipping dangling references.
// The input is not mutated; a fresh snapshot is returned.
func Normalize(s Snapshot) *Snapshot {
	n := &Snapshot{
		Hubs:             dedupe(s.Hubs),
		Customers:        dedupe(s.Customers),
		Products:         dedupe(s.Products),
		PriceHistory:     dedupe(s.PriceHistory),
		Consignments:     dedupe(s.Consignments),
		ConsignmentLines: dedupe(s.ConsignmentLines),
		Sales:            dedupe(s.Sales),
		SaleLines:        dedupe(s.SaleLines),
		Payments:         dedupe(s.Payments),
		Returns:          dedupe(s.Returns),
		AdminUsernames:   append([]string(nil), s.AdminUsernames...),
	}

	for i, c := range n.Customers {
		if c.Salutation == "" {
			n.Customers[i].Salutation = "Smt."
		}
	}
	for i, e := range n.PriceHistory {
		n.PriceHistory[i].UnitPrice = clamp(e.UnitPrice)
	}
	for i, c := range n.Consignments {
		n.Consignments[i].TransportCost = clamp(c.TransportCost)
	}
	for i, l := range n.ConsignmentLines {
		n.ConsignmentLines[i].QtyL = clamp(l.QtyL)
		n.ConsignmentLines[i].UnitPrice = clamp(l.UnitPrice)
	}
	for i, s := range n.Sales {
		n.Sales[i].ReimbursementAmount = clamp(s.ReimbursementAmount)
	}
	for i, l := range n.SaleLines {
		n.SaleLines[i].QtyL = clamp(l.QtyL)
		n.SaleLines[i].UnitPrice = clamp(l.UnitPrice)
	}
	for i, p := range n.Payments {
		n.Payments[i].Amount = clamp(p.Amount)
		if p.Mode == "" {
			n.Payments[i].Mode = "GPay"
		}
		if p.Type != PaymentTypeRefund {
			n.Payments[i].Type = PaymentTypePayment
		}
	}
	for i, r := range n.Returns {
		n.Returns[i].Qty = clamp(r.Qty)
		n.Returns[i].UnitPriceAtReturn = clamp(r.UnitPriceAtReturn)
		if r.Type != ReturnTypeSupplier {
			n.Returns[i].Type = ReturnTypeCustomer
		}
	}

	return n
}

// Seed returns the default snapshot for a fresh deployment: the standard
// wood-pressed-oil catalog with its launch prices and the primary hub.
// It is also the fallback when the persistence collaborator is unreachable
// and no cached state exists.
func Seed() *Snapshot {
	price := func(n int64) decimal.Decimal { return decimal.NewFromInt(n) }
	return &Snapshot{
		Hubs: []Hub{
			{ID: "hub-1", Name: "Magizh Aadhi Hub (Chennai)", Address: "Chennai, India"},
		},
		Products: []Product{
			{ID: "p1", Name: "Gingelly Oil (Jaggery)"},
			{ID: "p2", Name: "Coconut Oil"},
			{ID: "p3", Name: "Groundnut Oil"},
			{ID: "p4", Name: "Deepam Oil"},
			{ID: "p5", Name: "Castor Oil"},
			{ID: "p6", Name: "Gingelly Oil (Palm Sugar)"},
		},
		PriceHistory: []PriceEntry{
			{ID: "ph1", ProductID: "p1", EffectiveDate: "2025-01-01", UnitPrice: price(390)},
			{ID: "ph2", ProductID: "p2", EffectiveDate: "2025-01-01", UnitPrice: price(450)},
			{ID: "ph3", ProductID: "p3", EffectiveDate: "2025-01-01", UnitPrice: price(240)},
			{ID: "ph4", ProductID: "p4", EffectiveDate: "2025-01-01", UnitPrice: price(190)},
			{ID: "ph5", ProductID: "p5", EffectiveDate: "2025-01-01", UnitPrice: price(290)},
			{ID: "ph6", ProductID: "p6", EffectiveDate: "2025-01-01", UnitPrice: price(430)},
		},
	}
}
