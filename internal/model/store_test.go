package model

import "testing"

func TestNextSyncStep(t *testing.T) {
	cases := []struct {
		current SyncStep
		next    SyncStep
		ok      bool
	}{
		{SyncStepConnection, SyncStepProducts, true},
		{SyncStepProducts, SyncStepVariations, true},
		{SyncStepVariations, SyncStepOrders, true},
		{SyncStepOrders, SyncStepSaving, true},
		{SyncStepSaving, "", false},
		{"unknown", "", false},
	}

	for _, c := range cases {
		next, ok := NextSyncStep(c.current)
		if next != c.next || ok != c.ok {
			t.Errorf("NextSyncStep(%q) = (%q, %v), 期望 (%q, %v)", c.current, next, ok, c.next, c.ok)
		}
	}
}

func TestSyncStepOrder(t *testing.T) {
	if len(SyncStepOrder) != 5 {
		t.Fatalf("步骤数量 = %d, 期望 5", len(SyncStepOrder))
	}
	if SyncStepOrder[0] != SyncStepConnection {
		t.Errorf("首步骤 = %q, 期望 connection", SyncStepOrder[0])
	}
	if SyncStepOrder[len(SyncStepOrder)-1] != SyncStepSaving {
		t.Errorf("末步骤 = %q, 期望 saving", SyncStepOrder[len(SyncStepOrder)-1])
	}
}

func TestDeriveStockStatus(t *testing.T) {
	if got := DeriveStockStatus(3); got != StockStatusIn {
		t.Errorf("DeriveStockStatus(3) = %q", got)
	}
	if got := DeriveStockStatus(0); got != StockStatusOut {
		t.Errorf("DeriveStockStatus(0) = %q", got)
	}
	if got := DeriveStockStatus(-1); got != StockStatusOut {
		t.Errorf("DeriveStockStatus(-1) = %q", got)
	}
}
