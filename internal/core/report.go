package core

import (
	"sort"
	"time"

	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

// PricingRow is one product's row of the pricing pivot: Prices is aligned
// with the report's PriceDates, each cell the latest price effective on or
// before that column's date, nil when the product had no price yet.
type PricingRow struct {
	ProductID   string             `json:"product_id"`
	ProductName string             `json:"product_name"`
	Prices      []*decimal.Decimal `json:"prices"`
}

// ProductVolume pairs a product with a consumed volume for the per-client
// breakdown.
type ProductVolume struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	QtyL        decimal.Decimal `json:"qty_l"`
}

// ClientStatement is one customer's section of the consolidated report.
// TotalValue is net purchases (sales minus customer returns); TotalVolume
// sums per-product consumption clamped at zero per product.
type ClientStatement struct {
	CustomerID  string          `json:"customer_id"`
	Salutation  string          `json:"salutation"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone,omitempty"`
	Balance     decimal.Decimal `json:"balance"`
	TotalVolume decimal.Decimal `json:"total_volume"`
	TotalValue  decimal.Decimal `json:"total_value"`
	Products    []ProductVolume `json:"products"`
	Ledger      []LedgerEntry   `json:"ledger"`
}

// ConsolidatedReport is the all-entity business report: pricing pivot,
// global totals, and per-client ledger statements sorted by net value.
type ConsolidatedReport struct {
	PriceDates          []store.Date      `json:"price_dates"`
	PricingMatrix       []PricingRow      `json:"pricing_matrix"`
	TotalSoldVolume     decimal.Decimal   `json:"total_sold_volume"`
	TotalReturnedVolume decimal.Decimal   `json:"total_returned_volume"`
	TotalSoldValue      decimal.Decimal   `json:"total_sold_value"`
	TotalReturnedValue  decimal.Decimal   `json:"total_returned_value"`
	NetBusinessValue    decimal.Decimal   `json:"net_business_value"`
	TotalStockQty       decimal.Decimal   `json:"total_stock_qty"`
	TotalAssetValue     decimal.Decimal   `json:"total_asset_value"`
	TotalReceivables    decimal.Decimal   `json:"total_receivables"`
	Clients             []ClientStatement `json:"clients"`
}

// BuildConsolidatedReport assembles the full report from one snapshot.
// Stock figures come from the valuation engine at scope "all"; receivables
// count positive balances only. asOf anchors the stock-age computation.
func BuildConsolidatedReport(s *store.Snapshot, asOf time.Time) *ConsolidatedReport {
	r := &ConsolidatedReport{PriceDates: PriceDates(s)}

	for _, p := range s.Products {
		row := PricingRow{ProductID: p.ID, ProductName: p.Name, Prices: make([]*decimal.Decimal, len(r.PriceDates))}
		for i, d := range r.PriceDates {
			if hasPriceOnOrBefore(s, p.ID, d) {
				price := LatestPrice(s, p.ID, d)
				row.Prices[i] = &price
			}
		}
		r.PricingMatrix = append(r.PricingMatrix, row)
	}

	for _, sl := range s.SaleLines {
		r.TotalSoldVolume = r.TotalSoldVolume.Add(sl.QtyL)
		r.TotalSoldValue = r.TotalSoldValue.Add(sl.QtyL.Mul(sl.UnitPrice))
	}
	for _, ret := range s.Returns {
		r.TotalReturnedVolume = r.TotalReturnedVolume.Add(ret.Qty)
		r.TotalReturnedValue = r.TotalReturnedValue.Add(ret.Qty.Mul(ret.UnitPriceAtReturn))
	}
	r.NetBusinessValue = r.TotalSoldValue.Sub(r.TotalReturnedValue)

	for _, p := range s.Products {
		m := ComputeInventoryMetrics(s, ScopeAllHubs, p.ID, asOf)
		r.TotalStockQty = r.TotalStockQty.Add(m.Qty)
		r.TotalAssetValue = r.TotalAssetValue.Add(m.Value)
	}

	r.TotalReceivables = TotalReceivables(s)

	for _, c := range s.Customers {
		r.Clients = append(r.Clients, buildClientStatement(s, c))
	}
	sort.SliceStable(r.Clients, func(i, j int) bool {
		return r.Clients[i].TotalValue.GreaterThan(r.Clients[j].TotalValue)
	})

	return r
}

func buildClientStatement(s *store.Snapshot, c store.Customer) ClientStatement {
	st := ClientStatement{
		CustomerID: c.ID,
		Salutation: c.Salutation,
		Name:       c.Name,
		Phone:      c.Phone,
		Balance:    OutstandingBalance(s, c.ID),
		Ledger:     CustomerLedger(s, c.ID),
	}

	// Per-product consumption: sold minus returned, per product.
	consumption := make(map[string]decimal.Decimal)
	for _, sale := range s.Sales {
		if sale.CustomerID != c.ID {
			continue
		}
		for _, sl := range s.LinesOfSale(sale.ID) {
			if sl.QtyL.IsPositive() {
				consumption[sl.ProductID] = consumption[sl.ProductID].Add(sl.QtyL)
			}
		}
	}
	for _, ret := range s.Returns {
		if ret.CustomerID == c.ID && ret.Type == store.ReturnTypeCustomer {
			consumption[ret.ProductID] = consumption[ret.ProductID].Sub(ret.Qty)
		}
	}
	for _, p := range s.Products {
		vol := consumption[p.ID]
		if vol.IsPositive() {
			st.Products = append(st.Products, ProductVolume{ProductID: p.ID, ProductName: p.Name, QtyL: vol})
			st.TotalVolume = st.TotalVolume.Add(vol)
		}
	}

	for _, e := range st.Ledger {
		switch e.Type {
		case LedgerSale:
			st.TotalValue = st.TotalValue.Add(e.Debit)
		case LedgerReturn:
			st.TotalValue = st.TotalValue.Sub(e.Credit)
		}
	}
	return st
}

func hasPriceOnOrBefore(s *store.Snapshot, productID string, d store.Date) bool {
	for _, e := range s.PriceHistory {
		if e.ProductID == productID && e.EffectiveDate <= d {
			return true
		}
	}
	return false
}
