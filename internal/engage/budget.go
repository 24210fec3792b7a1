package engage

import (
	"strings"
	"sync"
)

// Unlimited disables a quota or a maximum threshold. Any negative value
// does the same; zero is a real limit that admits nothing.
const Unlimited = -1

// BudgetConfig holds the hourly quotas. A negative value disables that limit.
type BudgetConfig struct {
	PerAccountHourly int
	GlobalHourly     int
}

// Budget tracks actions taken in the current quota window, per account and
// globally. Counts only grow until Rollover clears them.
type Budget struct {
	cfg BudgetConfig

	mu       sync.Mutex
	accounts map[string]int
	global   int
}

func NewBudget(cfg BudgetConfig) *Budget {
	return &Budget{cfg: cfg, accounts: make(map[string]int)}
}

// RemainingForAccount reports whether handle is still below its hourly quota.
func (b *Budget) RemainingForAccount(handle string) bool {
	if b.cfg.PerAccountHourly < 0 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[key(handle)] < b.cfg.PerAccountHourly
}

// RemainingGlobal reports whether the global hourly quota has room left.
func (b *Budget) RemainingGlobal() bool {
	if b.cfg.GlobalHourly < 0 {
		return true
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.global < b.cfg.GlobalHourly
}

// RecordAction counts one confirmed action for handle. Call it only after the
// platform acknowledged the action.
func (b *Budget) RecordAction(handle string) {
	b.mu.Lock()
	b.accounts[key(handle)]++
	b.global++
	b.mu.Unlock()
}

// Rollover starts a new quota window.
func (b *Budget) Rollover() {
	b.mu.Lock()
	b.accounts = make(map[string]int)
	b.global = 0
	b.mu.Unlock()
}

// AccountCount returns the actions recorded for handle in this window.
func (b *Budget) AccountCount(handle string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.accounts[key(handle)]
}

// GlobalCount returns the actions recorded in this window.
func (b *Budget) GlobalCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.global
}

func key(handle string) string {
	return strings.ToLower(strings.TrimPrefix(handle, "@"))
}
