package core_test

import (
	"testing"
	"time"

	"oilhub/internal/core"
	"oilhub/internal/store"

	"github.com/shopspring/decimal"
)

func TestInventory_ScenarioA(t *testing.T) {
	s := scenarioA(t)

	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	wantDecimal(t, "qty", m.Qty, "70")
	wantDecimal(t, "value", m.Value, "28000") // 70 remaining × 400 cost basis
}

func TestInventory_FIFOAcrossBatches(t *testing.T) {
	// Scenario D: 50 L @ 400 received 2025-01-01, 50 L @ 420 received
	// 2025-02-01, then 60 L sold. The older batch drains fully, the newer
	// drops to 40 L.
	s := store.Normalize(store.Snapshot{
		Hubs:     []store.Hub{{ID: "hub-a", Name: "Hub A"}},
		Products: []store.Product{{ID: "coconut", Name: "Coconut Oil"}},
		Consignments: []store.Consignment{
			{ID: "con-1", ReceiveDate: "2025-01-01", ToHubID: "hub-a"},
			{ID: "con-2", ReceiveDate: "2025-02-01", ToHubID: "hub-a"},
		},
		ConsignmentLines: []store.ConsignmentLine{
			// Listed newest-first on purpose: order must come from receive
			// dates, not slice position.
			{ID: "cl-2", ConsignmentID: "con-2", ProductID: "coconut", QtyL: dec(t, "50"), UnitPrice: dec(t, "420")},
			{ID: "cl-1", ConsignmentID: "con-1", ProductID: "coconut", QtyL: dec(t, "50"), UnitPrice: dec(t, "400")},
		},
		Sales: []store.Sale{
			{ID: "sale-1", SaleDate: "2025-02-10", HubID: "hub-a", CustomerID: "c1"},
		},
		SaleLines: []store.SaleLine{
			{ID: "sl-1", SaleID: "sale-1", ProductID: "coconut", QtyL: dec(t, "60"), UnitPrice: dec(t, "450")},
		},
	})

	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	wantDecimal(t, "qty", m.Qty, "40")
	wantDecimal(t, "value", m.Value, "16800") // 40 × 420: only the newer layer remains
}

func TestInventory_FIFOOlderBatchFirst(t *testing.T) {
	// A sale smaller than the older batch must leave the newer batch
	// untouched entirely.
	s := store.Normalize(store.Snapshot{
		Hubs:     []store.Hub{{ID: "hub-a", Name: "Hub A"}},
		Products: []store.Product{{ID: "coconut", Name: "Coconut Oil"}},
		Consignments: []store.Consignment{
			{ID: "con-1", ReceiveDate: "2025-01-01", ToHubID: "hub-a"},
			{ID: "con-2", ReceiveDate: "2025-02-01", ToHubID: "hub-a"},
		},
		ConsignmentLines: []store.ConsignmentLine{
			{ID: "cl-1", ConsignmentID: "con-1", ProductID: "coconut", QtyL: dec(t, "50"), UnitPrice: dec(t, "400")},
			{ID: "cl-2", ConsignmentID: "con-2", ProductID: "coconut", QtyL: dec(t, "50"), UnitPrice: dec(t, "420")},
		},
		Sales: []store.Sale{
			{ID: "sale-1", SaleDate: "2025-02-10", HubID: "hub-a", CustomerID: "c1"},
		},
		SaleLines: []store.SaleLine{
			{ID: "sl-1", SaleID: "sale-1", ProductID: "coconut", QtyL: dec(t, "20"), UnitPrice: dec(t, "450")},
		},
	})

	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	wantDecimal(t, "qty", m.Qty, "80")
	// 30 × 400 remaining in the old layer + 50 × 420 untouched new layer.
	wantDecimal(t, "value", m.Value, "33000")
}

func TestInventory_SupplierReturnConsumesStock(t *testing.T) {
	s := scenarioA(t)
	s = s.WithReturn(store.ReturnRecord{
		ID: "ret-1", Date: "2025-01-15", Type: store.ReturnTypeSupplier,
		HubID: "hub-a", ProductID: "coconut",
		Qty: dec(t, "10"), UnitPriceAtReturn: dec(t, "400"),
	})

	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	wantDecimal(t, "qty", m.Qty, "60")
	wantDecimal(t, "value", m.Value, "24000")
}

func TestInventory_CustomerReturnDoesNotRestock(t *testing.T) {
	s := scenarioA(t)
	s = s.WithReturn(store.ReturnRecord{
		ID: "ret-1", Date: "2025-01-20", Type: store.ReturnTypeCustomer,
		HubID: "hub-a", CustomerID: "cust-x", ProductID: "coconut",
		Qty: dec(t, "10"), UnitPriceAtReturn: dec(t, "450"),
	})

	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	wantDecimal(t, "qty", m.Qty, "70")
}

func TestInventory_OversellCapsAtZero(t *testing.T) {
	s := scenarioA(t)
	s = s.WithSale(store.Sale{ID: "sale-2", SaleDate: "2025-01-11", HubID: "hub-a", CustomerID: "cust-x"},
		[]store.SaleLine{{ID: "sl-2", SaleID: "sale-2", ProductID: "coconut", QtyL: dec(t, "500"), UnitPrice: dec(t, "450")}})

	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	if !m.Qty.IsZero() {
		t.Errorf("expected qty 0 after overselling, got %s", m.Qty)
	}
	if !m.Value.IsZero() {
		t.Errorf("expected value 0 after overselling, got %s", m.Value)
	}
	if m.AgeDays != 0 {
		t.Errorf("expected age 0 for empty stock, got %d", m.AgeDays)
	}
}

func TestInventory_ScopeAggregation(t *testing.T) {
	s := store.Normalize(store.Snapshot{
		Hubs:     []store.Hub{{ID: "hub-a", Name: "Hub A"}, {ID: "hub-b", Name: "Hub B"}},
		Products: []store.Product{{ID: "coconut", Name: "Coconut Oil"}},
		Consignments: []store.Consignment{
			{ID: "con-1", ReceiveDate: "2025-01-01", ToHubID: "hub-a"},
			{ID: "con-2", ReceiveDate: "2025-01-05", ToHubID: "hub-b"},
		},
		ConsignmentLines: []store.ConsignmentLine{
			{ID: "cl-1", ConsignmentID: "con-1", ProductID: "coconut", QtyL: dec(t, "100"), UnitPrice: dec(t, "400")},
			{ID: "cl-2", ConsignmentID: "con-2", ProductID: "coconut", QtyL: dec(t, "80"), UnitPrice: dec(t, "410")},
		},
		Sales: []store.Sale{
			{ID: "sale-1", SaleDate: "2025-01-10", HubID: "hub-a", CustomerID: "c1"},
			{ID: "sale-2", SaleDate: "2025-01-12", HubID: "hub-b", CustomerID: "c1"},
		},
		SaleLines: []store.SaleLine{
			{ID: "sl-1", SaleID: "sale-1", ProductID: "coconut", QtyL: dec(t, "25"), UnitPrice: dec(t, "450")},
			{ID: "sl-2", SaleID: "sale-2", ProductID: "coconut", QtyL: dec(t, "15"), UnitPrice: dec(t, "450")},
		},
	})

	all := core.ComputeInventoryMetrics(s, core.ScopeAllHubs, "coconut", asOf)
	a := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	b := core.ComputeInventoryMetrics(s, "hub-b", "coconut", asOf)

	if !all.Qty.Equal(a.Qty.Add(b.Qty)) {
		t.Errorf("scope aggregation qty: all=%s, hub-a+hub-b=%s", all.Qty, a.Qty.Add(b.Qty))
	}
	if !all.Value.Equal(a.Value.Add(b.Value)) {
		t.Errorf("scope aggregation value: all=%s, hub-a+hub-b=%s", all.Value, a.Value.Add(b.Value))
	}
}

func TestInventory_Conservation(t *testing.T) {
	s := scenarioA(t)
	s = s.WithReturn(store.ReturnRecord{
		ID: "ret-1", Date: "2025-01-15", Type: store.ReturnTypeSupplier,
		HubID: "hub-a", ProductID: "coconut", Qty: dec(t, "5"), UnitPriceAtReturn: dec(t, "400"),
	})

	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	// 100 received − 30 sold − 5 returned to supplier.
	wantDecimal(t, "conserved qty", m.Qty, "65")
}

func TestInventory_WeightedAge(t *testing.T) {
	// Two live layers: 30 L aged 59 days (2025-01-01) and 50 L aged 28 days
	// (2025-02-01) as of 2025-03-01. Weighted mean = (30×59 + 50×28) / 80.
	s := store.Normalize(store.Snapshot{
		Hubs:     []store.Hub{{ID: "hub-a", Name: "Hub A"}},
		Products: []store.Product{{ID: "coconut", Name: "Coconut Oil"}},
		Consignments: []store.Consignment{
			{ID: "con-1", ReceiveDate: "2025-01-01", ToHubID: "hub-a"},
			{ID: "con-2", ReceiveDate: "2025-02-01", ToHubID: "hub-a"},
		},
		ConsignmentLines: []store.ConsignmentLine{
			{ID: "cl-1", ConsignmentID: "con-1", ProductID: "coconut", QtyL: dec(t, "30"), UnitPrice: dec(t, "400")},
			{ID: "cl-2", ConsignmentID: "con-2", ProductID: "coconut", QtyL: dec(t, "50"), UnitPrice: dec(t, "420")},
		},
	})

	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	want := int(decimal.NewFromInt(30*59 + 50*28).Div(decimal.NewFromInt(80)).Round(0).IntPart())
	if m.AgeDays != want {
		t.Errorf("expected weighted age %d days, got %d", want, m.AgeDays)
	}
}

func TestInventory_DanglingReferencesSkipped(t *testing.T) {
	s := store.Normalize(store.Snapshot{
		Hubs:     []store.Hub{{ID: "hub-a", Name: "Hub A"}},
		Products: []store.Product{{ID: "coconut", Name: "Coconut Oil"}},
		ConsignmentLines: []store.ConsignmentLine{
			// No parent consignment: must not open a batch.
			{ID: "cl-ghost", ConsignmentID: "missing", ProductID: "coconut", QtyL: dec(t, "100"), UnitPrice: dec(t, "400")},
		},
		SaleLines: []store.SaleLine{
			// No parent sale: must not consume anything.
			{ID: "sl-ghost", SaleID: "missing", ProductID: "coconut", QtyL: dec(t, "50"), UnitPrice: dec(t, "450")},
		},
	})

	m := core.ComputeInventoryMetrics(s, core.ScopeAllHubs, "coconut", asOf)
	if !m.Qty.IsZero() || !m.Value.IsZero() {
		t.Errorf("expected empty metrics for dangling references, got qty=%s value=%s", m.Qty, m.Value)
	}
}

func TestInventory_ZeroQtyLineExcluded(t *testing.T) {
	s := scenarioA(t)
	s = s.WithConsignment(store.Consignment{ID: "con-2", ReceiveDate: "2025-01-02", ToHubID: "hub-a"},
		[]store.ConsignmentLine{{ID: "cl-z", ConsignmentID: "con-2", ProductID: "coconut", QtyL: decimal.Zero, UnitPrice: dec(t, "999")}})

	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", asOf)
	wantDecimal(t, "qty", m.Qty, "70")
	wantDecimal(t, "value", m.Value, "28000")
}

func TestBuildStockLevels(t *testing.T) {
	s := scenarioA(t)
	s = s.WithHub(store.Hub{ID: "hub-b", Name: "Hub B"})
	s = s.WithConsignment(store.Consignment{ID: "con-b", ReceiveDate: "2025-02-01", ToHubID: "hub-b"},
		[]store.ConsignmentLine{{ID: "cl-b", ConsignmentID: "con-b", ProductID: "coconut", QtyL: dec(t, "20"), UnitPrice: dec(t, "410")}})

	rows := core.BuildStockLevels(s, asOf)
	if len(rows) != 1 {
		t.Fatalf("expected 1 product row, got %d", len(rows))
	}
	row := rows[0]
	if row.ProductID != "coconut" || len(row.Hubs) != 2 {
		t.Fatalf("row shape: %+v", row)
	}
	wantDecimal(t, "all-hubs qty", row.All.Qty, "90")

	perHub := make(map[string]core.HubStock, len(row.Hubs))
	for _, h := range row.Hubs {
		perHub[h.HubID] = h
	}
	wantDecimal(t, "hub-a qty", perHub["hub-a"].Metrics.Qty, "70")
	wantDecimal(t, "hub-b qty", perHub["hub-b"].Metrics.Qty, "20")
	wantDecimal(t, "hub-b value", perHub["hub-b"].Metrics.Value, "8200")
}

func TestInventory_AgeNeverNegative(t *testing.T) {
	future := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) // before any receipt
	s := scenarioA(t)
	m := core.ComputeInventoryMetrics(s, "hub-a", "coconut", future)
	if m.AgeDays != 0 {
		t.Errorf("expected age clamped to 0 for future receipts, got %d", m.AgeDays)
	}
}
