package core

import (
	"sort"
	"time"

	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

// StockAlert flags a product running low at a specific hub.
type StockAlert struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	HubID       string          `json:"hub_id"`
	HubName     string          `json:"hub_name"`
	QtyL        decimal.Decimal `json:"qty_l"`
}

// SalesPoint is one day's invoiced value, for the revenue time series.
type SalesPoint struct {
	Date   store.Date      `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// ProductSales is a product's lifetime sold volume.
type ProductSales struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	VolumeL     decimal.Decimal `json:"volume_l"`
}

// ActivityEntry is one row of the recent-activity feed.
type ActivityEntry struct {
	Date        store.Date      `json:"date"`
	Kind        string          `json:"kind"` // "sale", "payment", "consignment", "return"
	Ref         string          `json:"ref"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// DashboardVitals is the home-screen summary: global money figures, the
// revenue series, per-product sales ranking, low-stock alerts, and the
// recent-activity feed. TotalStockValue respects hubScope; the other
// figures are global.
type DashboardVitals struct {
	TotalRevenue         decimal.Decimal `json:"total_revenue"`
	TotalProductionValue decimal.Decimal `json:"total_production_value"`
	TotalReceivables     decimal.Decimal `json:"total_receivables"`
	TotalStockValue      decimal.Decimal `json:"total_stock_value"`
	ConsignmentCount     int             `json:"consignment_count"`
	CustomerCount        int             `json:"customer_count"`
	SalesByDate          []SalesPoint    `json:"sales_by_date"`
	ProductSales         []ProductSales  `json:"product_sales"`
	StockAlerts          []StockAlert    `json:"stock_alerts"`
	RecentActivity       []ActivityEntry `json:"recent_activity"`
}

// recentActivityLimit caps the dashboard feed.
const recentActivityLimit = 10

// lowStockThreshold is the litre level below which a product/hub pair is
// flagged on the dashboard.
var lowStockThreshold = decimal.NewFromInt(10)

// BuildDashboard computes the vitals for one snapshot. hubScope narrows the
// stock valuation to a hub (or ScopeAllHubs); asOf anchors stock aging.
func BuildDashboard(s *store.Snapshot, hubScope string, asOf time.Time) *DashboardVitals {
	d := &DashboardVitals{
		TotalReceivables: TotalReceivables(s),
		ConsignmentCount: len(s.Consignments),
		CustomerCount:    len(s.Customers),
	}

	for _, sl := range s.SaleLines {
		d.TotalRevenue = d.TotalRevenue.Add(sl.QtyL.Mul(sl.UnitPrice))
	}
	for _, cl := range s.ConsignmentLines {
		d.TotalProductionValue = d.TotalProductionValue.Add(cl.QtyL.Mul(cl.UnitPrice))
	}
	for _, p := range s.Products {
		d.TotalStockValue = d.TotalStockValue.Add(ComputeInventoryMetrics(s, hubScope, p.ID, asOf).Value)
	}

	byDate := make(map[store.Date]decimal.Decimal)
	for _, sale := range s.Sales {
		total := decimal.Zero
		for _, sl := range s.LinesOfSale(sale.ID) {
			total = total.Add(sl.QtyL.Mul(sl.UnitPrice))
		}
		byDate[sale.SaleDate] = byDate[sale.SaleDate].Add(total)
	}
	for date, amount := range byDate {
		d.SalesByDate = append(d.SalesByDate, SalesPoint{Date: date, Amount: amount})
	}
	sort.Slice(d.SalesByDate, func(i, j int) bool { return d.SalesByDate[i].Date < d.SalesByDate[j].Date })

	for _, p := range s.Products {
		vol := decimal.Zero
		for _, sl := range s.SaleLines {
			if sl.ProductID == p.ID {
				vol = vol.Add(sl.QtyL)
			}
		}
		d.ProductSales = append(d.ProductSales, ProductSales{ProductID: p.ID, ProductName: p.Name, VolumeL: vol})
	}
	sort.SliceStable(d.ProductSales, func(i, j int) bool {
		return d.ProductSales[i].VolumeL.GreaterThan(d.ProductSales[j].VolumeL)
	})

	for _, p := range s.Products {
		for _, h := range s.Hubs {
			m := ComputeInventoryMetrics(s, h.ID, p.ID, asOf)
			if m.Qty.LessThan(lowStockThreshold) {
				d.StockAlerts = append(d.StockAlerts, StockAlert{
					ProductID: p.ID, ProductName: p.Name,
					HubID: h.ID, HubName: h.Name,
					QtyL: m.Qty,
				})
			}
		}
	}

	d.RecentActivity = buildRecentActivity(s)

	return d
}

// buildRecentActivity merges sales, payments, consignments, and returns into
// a single feed, newest first, capped at recentActivityLimit rows.
func buildRecentActivity(s *store.Snapshot) []ActivityEntry {
	var feed []ActivityEntry

	for _, sale := range s.Sales {
		total := decimal.Zero
		for _, sl := range s.LinesOfSale(sale.ID) {
			total = total.Add(sl.QtyL.Mul(sl.UnitPrice))
		}
		name := "Customer"
		if c, ok := s.Customer(sale.CustomerID); ok {
			name = c.Name
		}
		feed = append(feed, ActivityEntry{
			Date: sale.SaleDate, Kind: "sale", Ref: sale.SaleNo,
			Description: "Sale to " + name, Amount: total,
		})
	}
	for _, p := range s.Payments {
		name := "Customer"
		if c, ok := s.Customer(p.CustomerID); ok {
			name = c.Name
		}
		desc := "Payment from " + name
		if p.Type == store.PaymentTypeRefund {
			desc = "Refund to " + name
		}
		feed = append(feed, ActivityEntry{
			Date: p.PaymentDate, Kind: "payment", Ref: p.Reference,
			Description: desc, Amount: p.Amount,
		})
	}
	for _, con := range s.Consignments {
		total := decimal.Zero
		for _, cl := range s.LinesOfConsignment(con.ID) {
			total = total.Add(cl.QtyL.Mul(cl.UnitPrice))
		}
		hub := "hub"
		if h, ok := s.Hub(con.ToHubID); ok {
			hub = h.Name
		}
		feed = append(feed, ActivityEntry{
			Date: con.ReceiveDate, Kind: "consignment", Ref: con.ConsignmentNo,
			Description: "Stock received at " + hub, Amount: total,
		})
	}
	for _, r := range s.Returns {
		product := "Oil"
		if p, ok := s.Product(r.ProductID); ok {
			product = p.Name
		}
		feed = append(feed, ActivityEntry{
			Date: r.Date, Kind: "return", Ref: string(r.Type),
			Description: string(r.Type) + ": " + product,
			Amount:      r.Qty.Mul(r.UnitPriceAtReturn),
		})
	}

	sort.SliceStable(feed, func(i, j int) bool { return feed[i].Date > feed[j].Date })
	if len(feed) > recentActivityLimit {
		feed = feed[:recentActivityLimit]
	}
	return feed
}
