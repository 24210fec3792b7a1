package engage

import (
	"math/rand"
	"testing"
)

func TestBudgetRespectsQuotas(t *testing.T) {
	b := NewBudget(BudgetConfig{PerAccountHourly: 2, GlobalHourly: 3})
	if !b.RemainingForAccount("alice") || !b.RemainingGlobal() {
		t.Fatalf("expected fresh budget to admit")
	}
	b.RecordAction("alice")
	b.RecordAction("Alice")
	if b.RemainingForAccount("alice") {
		t.Fatalf("expected alice blocked by per-account quota")
	}
	if !b.RemainingForAccount("bob") {
		t.Fatalf("bob has his own quota")
	}
	b.RecordAction("bob")
	if b.RemainingGlobal() {
		t.Fatalf("expected blocked by global quota")
	}
	b.Rollover()
	if !b.RemainingForAccount("alice") || !b.RemainingGlobal() {
		t.Fatalf("expected rollover to reset counters")
	}
	if b.GlobalCount() != 0 || b.AccountCount("alice") != 0 {
		t.Fatalf("counts not cleared: global=%d alice=%d", b.GlobalCount(), b.AccountCount("alice"))
	}
}

func TestBudgetZeroQuotaAdmitsNothing(t *testing.T) {
	b := NewBudget(BudgetConfig{})
	if b.RemainingForAccount("alice") || b.RemainingGlobal() {
		t.Fatalf("quota 0 must reject with count 0")
	}
	b = NewBudget(BudgetConfig{PerAccountHourly: 0, GlobalHourly: Unlimited})
	if b.RemainingForAccount("alice") || !b.RemainingGlobal() {
		t.Fatalf("limits are independent")
	}
}

func TestBudgetNegativeMeansUnlimited(t *testing.T) {
	b := NewBudget(BudgetConfig{PerAccountHourly: Unlimited, GlobalHourly: -5})
	for i := 0; i < 100; i++ {
		b.RecordAction("alice")
	}
	if !b.RemainingForAccount("alice") || !b.RemainingGlobal() {
		t.Fatalf("expected unlimited budget")
	}
}

// remainingForAccount is false iff recordAction calls since the last rollover
// reach the quota, for any interleaving.
func TestBudgetHoldsUnderRandomSequence(t *testing.T) {
	const quota = 3
	b := NewBudget(BudgetConfig{PerAccountHourly: quota})
	handles := []string{"a", "b", "c"}
	since := map[string]int{}
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		switch op := rng.Intn(10); {
		case op == 0:
			b.Rollover()
			since = map[string]int{}
		default:
			h := handles[rng.Intn(len(handles))]
			b.RecordAction(h)
			since[h]++
		}
		for _, h := range handles {
			want := since[h] < quota
			if got := b.RemainingForAccount(h); got != want {
				t.Fatalf("step %d handle %s: remaining=%v, recorded=%d", i, h, got, since[h])
			}
		}
	}
}
