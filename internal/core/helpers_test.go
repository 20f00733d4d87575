package core_test

import (
	"testing"
	"time"

	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

// dec parses a decimal literal, failing the test on a typo in the fixture.
func dec(t *testing.T, v string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(v)
	if err != nil {
		t.Fatalf("bad decimal literal %q: %v", v, err)
	}
	return d
}

// asOf is the fixed valuation date used across tests so stock-age numbers
// are deterministic.
var asOf = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

// scenarioA returns the base fixture: one hub, one product priced at 400,
// a consignment of 100 L @ 400 on 2025-01-01 and a sale of 30 L @ 450 to
// customer cust-x on 2025-01-10.
func scenarioA(t *testing.T) *store.Snapshot {
	t.Helper()
	return store.Normalize(store.Snapshot{
		Hubs:      []store.Hub{{ID: "hub-a", Name: "Hub A"}},
		Customers: []store.Customer{{ID: "cust-x", Salutation: "Smt.", Name: "Customer X"}},
		Products:  []store.Product{{ID: "coconut", Name: "Coconut Oil"}},
		PriceHistory: []store.PriceEntry{
			{ID: "ph1", ProductID: "coconut", EffectiveDate: "2025-01-01", UnitPrice: dec(t, "400")},
		},
		Consignments: []store.Consignment{
			{ID: "con-1", ConsignmentNo: "CON-1", ReceiveDate: "2025-01-01", ToHubID: "hub-a"},
		},
		ConsignmentLines: []store.ConsignmentLine{
			{ID: "cl-1", ConsignmentID: "con-1", ProductID: "coconut", QtyL: dec(t, "100"), UnitPrice: dec(t, "400")},
		},
		Sales: []store.Sale{
			{ID: "sale-1", SaleNo: "S-1", SaleDate: "2025-01-10", HubID: "hub-a", CustomerID: "cust-x"},
		},
		SaleLines: []store.SaleLine{
			{ID: "sl-1", SaleID: "sale-1", ProductID: "coconut", QtyL: dec(t, "30"), UnitPrice: dec(t, "450")},
		},
	})
}

func wantDecimal(t *testing.T, label string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(dec(t, want)) {
		t.Errorf("%s: expected %s, got %s", label, want, got)
	}
}
