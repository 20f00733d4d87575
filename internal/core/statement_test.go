package core_test

import (
	"testing"

	"oilhub/internal/core"
	"oilhub/internal/store"
)

// statementFixture layers payments, a refund, and a return on top of
// scenarioA so the ledger exercises every entry type.
func statementFixture(t *testing.T) *store.Snapshot {
	t.Helper()
	s := scenarioA(t)
	s = s.WithPayment(store.Payment{
		ID: "pay-1", PaymentDate: "2025-01-12", CustomerID: "cust-x",
		Amount: dec(t, "5000"), Mode: "GPay", Type: store.PaymentTypePayment,
		Reference: "UPI 4411",
	})
	s = s.WithPayment(store.Payment{
		ID: "pay-2", PaymentDate: "2025-01-25", CustomerID: "cust-x",
		Amount: dec(t, "500"), Mode: "Bank", Type: store.PaymentTypeRefund,
	})
	s = s.WithReturn(store.ReturnRecord{
		ID: "ret-1", Date: "2025-01-20", Type: store.ReturnTypeCustomer,
		HubID: "hub-a", CustomerID: "cust-x", ProductID: "coconut",
		Qty: dec(t, "10"), UnitPriceAtReturn: dec(t, "450"),
	})
	return s
}

func TestLedger_AscendingAndConsistent(t *testing.T) {
	s := statementFixture(t)
	entries := core.CustomerLedger(s, "cust-x")
	if len(entries) != 4 {
		t.Fatalf("expected 4 ledger entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Date > entries[i].Date {
			t.Errorf("entries out of order: %s after %s", entries[i-1].Date, entries[i].Date)
		}
	}
	last := entries[len(entries)-1].RunningBalance
	if !last.Equal(core.OutstandingBalance(s, "cust-x")) {
		t.Errorf("final running balance %s != outstanding %s",
			last, core.OutstandingBalance(s, "cust-x"))
	}
}

func TestLedger_RunningBalanceWalk(t *testing.T) {
	s := statementFixture(t)
	entries := core.CustomerLedger(s, "cust-x")
	// sale 13500, payment −5000, return −4500, refund +500.
	wants := []string{"13500", "8500", "4000", "4500"}
	if len(entries) != len(wants) {
		t.Fatalf("expected %d entries, got %d", len(wants), len(entries))
	}
	for i, w := range wants {
		wantDecimal(t, "running balance", entries[i].RunningBalance, w)
	}
}

func TestLedger_SaleRowConsolidatesBasket(t *testing.T) {
	s := scenarioA(t)
	s = s.WithProduct(store.Product{ID: "castor", Name: "Castor Oil"})
	s = s.WithSale(store.Sale{ID: "sale-2", SaleNo: "S-2", SaleDate: "2025-01-15", HubID: "hub-a", CustomerID: "cust-x"},
		[]store.SaleLine{
			{ID: "sl-a", SaleID: "sale-2", ProductID: "coconut", QtyL: dec(t, "20"), UnitPrice: dec(t, "450")},
			{ID: "sl-b", SaleID: "sale-2", ProductID: "castor", QtyL: dec(t, "5"), UnitPrice: dec(t, "290")},
		})

	entries := core.CustomerLedger(s, "cust-x")
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	row := entries[1]
	if row.Type != core.LedgerSale || row.Ref != "S-2" {
		t.Fatalf("unexpected row: %+v", row)
	}
	want := "Coconut Oil (20L @ ₹450), Castor Oil (5L @ ₹290)"
	if row.Description != want {
		t.Errorf("description:\n  got  %q\n  want %q", row.Description, want)
	}
	wantDecimal(t, "debit", row.Debit, "10450")
}

func TestLedger_ZeroQtySaleOmitted(t *testing.T) {
	s := scenarioA(t)
	s = s.WithSale(store.Sale{ID: "sale-2", SaleNo: "S-2", SaleDate: "2025-01-15", HubID: "hub-a", CustomerID: "cust-x"},
		[]store.SaleLine{{ID: "sl-z", SaleID: "sale-2", ProductID: "coconut", QtyL: dec(t, "0"), UnitPrice: dec(t, "450")}})

	entries := core.CustomerLedger(s, "cust-x")
	for _, e := range entries {
		if e.Ref == "S-2" {
			t.Error("sale with no positive lines must be omitted from the ledger")
		}
	}
}

func TestLedger_RefundRow(t *testing.T) {
	s := statementFixture(t)
	entries := core.CustomerLedger(s, "cust-x")
	row := entries[len(entries)-1] // 2025-01-25 refund
	if row.Type != core.LedgerRefund {
		t.Fatalf("expected refund row last, got %+v", row)
	}
	if row.Ref != "Bank" {
		t.Errorf("refund ref: expected mode %q, got %q", "Bank", row.Ref)
	}
	if row.Description != "Outward Refund (Bank)" {
		t.Errorf("refund description: got %q", row.Description)
	}
	wantDecimal(t, "refund debit", row.Debit, "500")
	wantDecimal(t, "refund credit", row.Credit, "0")
}

func TestLedger_PaymentRowUsesReference(t *testing.T) {
	s := statementFixture(t)
	entries := core.CustomerLedger(s, "cust-x")
	row := entries[1] // 2025-01-12 payment
	if row.Type != core.LedgerPayment {
		t.Fatalf("expected payment row, got %+v", row)
	}
	if row.Description != "UPI 4411" {
		t.Errorf("payment description: got %q", row.Description)
	}
	if row.Ref != "GPay" {
		t.Errorf("payment ref: got %q", row.Ref)
	}
	wantDecimal(t, "payment credit", row.Credit, "5000")
}

func TestLedger_ReturnRow(t *testing.T) {
	s := statementFixture(t)
	entries := core.CustomerLedger(s, "cust-x")
	row := entries[2] // 2025-01-20 return
	if row.Type != core.LedgerReturn {
		t.Fatalf("expected return row, got %+v", row)
	}
	if row.Ref != "Credit" {
		t.Errorf("return ref: got %q", row.Ref)
	}
	if row.Description != "Return: Coconut Oil (10L @ ₹450)" {
		t.Errorf("return description: got %q", row.Description)
	}
	wantDecimal(t, "return credit", row.Credit, "4500")
}

func TestLedger_SupplierReturnExcluded(t *testing.T) {
	s := scenarioA(t)
	s = s.WithReturn(store.ReturnRecord{
		ID: "ret-1", Date: "2025-01-15", Type: store.ReturnTypeSupplier,
		HubID: "hub-a", CustomerID: "cust-x", ProductID: "coconut",
		Qty: dec(t, "10"), UnitPriceAtReturn: dec(t, "400"),
	})
	entries := core.CustomerLedger(s, "cust-x")
	for _, e := range entries {
		if e.Type == core.LedgerReturn {
			t.Error("supplier returns must not appear on a customer statement")
		}
	}
}
