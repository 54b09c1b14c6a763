// Package ledger tracks the engine's running belief about per-SKU inventory
// quantity.
package ledger

import "sync"

// Ledger is the mutable inventory state shared by the weight/inventory
// timeline. Transactions and snapshot reconciliations serialize through one
// lock; event rates are low enough that a single critical section suffices.
type Ledger struct {
	mu     sync.Mutex
	levels map[string]int
}

// Divergence describes one SKU whose snapshot count moved beyond tolerance
// from the tracked count.
type Divergence struct {
	SKU      string
	Expected int
	Actual   int
}

// New creates a ledger initialized from an inventory snapshot.
func New(initial map[string]int) *Ledger {
	levels := make(map[string]int, len(initial))
	for sku, qty := range initial {
		levels[sku] = qty
	}
	return &Ledger{levels: levels}
}

// Apply decrements the tracked quantity for a sold SKU. Unknown SKUs are a
// no-op, which also keeps quantities non-negative for SKUs the ledger never
// saw. Tracked quantities themselves stop at zero.
func (l *Ledger) Apply(sku string) {
	if sku == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if qty, ok := l.levels[sku]; ok && qty > 0 {
		l.levels[sku] = qty - 1
	}
}

// Reconcile compares the tracked quantity against a snapshot's actual count
// and always resyncs to the actual value, making detection one-shot per
// divergence. The returned Divergence is meaningful only when diverged is
// true. absThreshold is strict; pctThreshold (relative to the actual count)
// is strict too and disabled when <= 0. SKUs the ledger has never tracked
// are adopted silently.
func (l *Ledger) Reconcile(sku string, actual int, absThreshold int, pctThreshold float64) (Divergence, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	expected, tracked := l.levels[sku]
	l.levels[sku] = actual
	if !tracked {
		return Divergence{}, false
	}

	diff := expected - actual
	if diff < 0 {
		diff = -diff
	}
	if diff <= absThreshold {
		return Divergence{}, false
	}
	if pctThreshold > 0 {
		if actual <= 0 {
			return Divergence{}, false
		}
		if float64(diff)/float64(actual)*100 <= pctThreshold {
			return Divergence{}, false
		}
	}
	return Divergence{SKU: sku, Expected: expected, Actual: actual}, true
}

// Level returns the tracked quantity for a SKU.
func (l *Ledger) Level(sku string) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	qty, ok := l.levels[sku]
	return qty, ok
}

// Size returns the number of tracked SKUs.
func (l *Ledger) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.levels)
}

// Snapshot returns a copy of the tracked levels.
func (l *Ledger) Snapshot() map[string]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]int, len(l.levels))
	for sku, qty := range l.levels {
		out[sku] = qty
	}
	return out
}
