package store

import "fmt"

// Copy-on-write mutation helpers. Each With*/Without* method returns a new
// Snapshot sharing the untouched collections with the receiver; the affected
// collection is rebuilt into a fresh slice. Published snapshots are never
// mutated, so readers holding an older revision stay consistent.

// upsert returns a new slice with rec replacing the record carrying the same
// id, or appended when no such record exists.
func upsert[T identified](list []T, rec T) []T {
	out := make([]T, 0, len(list)+1)
	replaced := false
	for _, r := range list {
		if r.recordID() == rec.recordID() {
			out = append(out, rec)
			replaced = true
			continue
		}
		out = append(out, r)
	}
	if !replaced {
		out = append(out, rec)
	}
	return out
}

// removeWhere returns a new slice without the records matching pred.
func removeWhere[T any](list []T, pred func(T) bool) []T {
	out := make([]T, 0, len(list))
	for _, r := range list {
		if !pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *Snapshot) clone() *Snapshot {
	c := *s
	return &c
}

func (s *Snapshot) WithHub(h Hub) *Snapshot {
	n := s.clone()
	n.Hubs = upsert(s.Hubs, h)
	return n
}

func (s *Snapshot) WithoutHub(id string) *Snapshot {
	n := s.clone()
	n.Hubs = removeWhere(s.Hubs, func(h Hub) bool { return h.ID == id })
	return n
}

func (s *Snapshot) WithCustomer(c Customer) *Snapshot {
	n := s.clone()
	n.Customers = upsert(s.Customers, c)
	return n
}

func (s *Snapshot) WithoutCustomer(id string) *Snapshot {
	n := s.clone()
	n.Customers = removeWhere(s.Customers, func(c Customer) bool { return c.ID == id })
	return n
}

func (s *Snapshot) WithProduct(p Product) *Snapshot {
	n := s.clone()
	n.Products = upsert(s.Products, p)
	return n
}

func (s *Snapshot) WithoutProduct(id string) *Snapshot {
	n := s.clone()
	n.Products = removeWhere(s.Products, func(p Product) bool { return p.ID == id })
	return n
}

// WithPrice records a price point. At most one entry exists per
// (product, effective date): an entry for the same product and date is
// replaced regardless of its id, so re-pricing a day edits in place.
func (s *Snapshot) WithPrice(e PriceEntry) *Snapshot {
	n := s.clone()
	trimmed := removeWhere(s.PriceHistory, func(p PriceEntry) bool {
		return p.ProductID == e.ProductID && p.EffectiveDate == e.EffectiveDate
	})
	n.PriceHistory = append(trimmed, e)
	return n
}

func (s *Snapshot) WithoutPrice(id string) *Snapshot {
	n := s.clone()
	n.PriceHistory = removeWhere(s.PriceHistory, func(p PriceEntry) bool { return p.ID == id })
	return n
}

// WithConsignment upserts a consignment together with its full line set.
// Previous lines of the same consignment are dropped first, so an edit
// replaces the whole basket.
func (s *Snapshot) WithConsignment(c Consignment, lines []ConsignmentLine) *Snapshot {
	n := s.clone()
	n.Consignments = upsert(s.Consignments, c)
	kept := removeWhere(s.ConsignmentLines, func(l ConsignmentLine) bool { return l.ConsignmentID == c.ID })
	n.ConsignmentLines = append(kept, lines...)
	return n
}

// WithoutConsignment deletes a consignment and cascades to its lines.
func (s *Snapshot) WithoutConsignment(id string) *Snapshot {
	n := s.clone()
	n.Consignments = removeWhere(s.Consignments, func(c Consignment) bool { return c.ID == id })
	n.ConsignmentLines = removeWhere(s.ConsignmentLines, func(l ConsignmentLine) bool { return l.ConsignmentID == id })
	return n
}

// WithSale upserts a sale together with its full line set.
func (s *Snapshot) WithSale(sale Sale, lines []SaleLine) *Snapshot {
	n := s.clone()
	n.Sales = upsert(s.Sales, sale)
	kept := removeWhere(s.SaleLines, func(l SaleLine) bool { return l.SaleID == sale.ID })
	n.SaleLines = append(kept, lines...)
	return n
}

// WithoutSale deletes a sale and cascades to its lines.
func (s *Snapshot) WithoutSale(id string) *Snapshot {
	n := s.clone()
	n.Sales = removeWhere(s.Sales, func(sl Sale) bool { return sl.ID == id })
	n.SaleLines = removeWhere(s.SaleLines, func(l SaleLine) bool { return l.SaleID == id })
	return n
}

func (s *Snapshot) WithPayment(p Payment) *Snapshot {
	n := s.clone()
	n.Payments = upsert(s.Payments, p)
	return n
}

func (s *Snapshot) WithoutPayment(id string) *Snapshot {
	n := s.clone()
	n.Payments = removeWhere(s.Payments, func(p Payment) bool { return p.ID == id })
	return n
}

func (s *Snapshot) WithReturn(r ReturnRecord) *Snapshot {
	n := s.clone()
	n.Returns = upsert(s.Returns, r)
	return n
}

func (s *Snapshot) WithoutReturn(id string) *Snapshot {
	n := s.clone()
	n.Returns = removeWhere(s.Returns, func(r ReturnRecord) bool { return r.ID == id })
	return n
}

func (s *Snapshot) WithAdminUsernames(names []string) *Snapshot {
	n := s.clone()
	n.AdminUsernames = append([]string(nil), names...)
	return n
}

// NextConsignmentNo returns the display number for the next consignment.
func (s *Snapshot) NextConsignmentNo() string {
	return fmt.Sprintf("CON-%d", len(s.Consignments)+1)
}

// NextSaleNo returns the display number for the next sale invoice.
func (s *Snapshot) NextSaleNo() string {
	return fmt.Sprintf("S-%d", len(s.Sales)+1)
}
