package rules

import (
	"sort"

	"github.com/openretail/storewatch/internal/event"
	"github.com/openretail/storewatch/internal/incident"
)

// InventoryDiscrepancy replays the inventory timeline: POS transactions
// decrement the ledger in event order, and every snapshot after the initial
// one reconciles each reported SKU. Reconciliation always resyncs the
// ledger to the reported count, so detection is one-shot per divergence.
// The ledger itself is seeded from the first snapshot by the engine.
type InventoryDiscrepancy struct{}

func (InventoryDiscrepancy) Name() string { return incident.NameInventoryDiscrepancy }

func (InventoryDiscrepancy) Detect(in *Input) []incident.Incident {
	if len(in.Snapshots) == 0 || in.Ledger == nil {
		return nil
	}
	start := in.Snapshots[0].Timestamp

	var out []incident.Incident
	pos, snaps := in.POS, in.Snapshots[1:]
	for len(pos) > 0 || len(snaps) > 0 {
		// Transactions apply before a snapshot at the same second, so the
		// snapshot sees the sale already reflected.
		if len(pos) > 0 && (len(snaps) == 0 || !pos[0].Timestamp.After(snaps[0].Timestamp)) {
			tx := pos[0]
			pos = pos[1:]
			if tx.Timestamp.After(start) {
				in.Ledger.Apply(tx.POS.SKU)
			}
			continue
		}
		snap := snaps[0]
		snaps = snaps[1:]
		out = append(out, reconcileSnapshot(in, snap)...)
	}
	return out
}

// reconcileSnapshot reconciles every SKU in one snapshot, in sorted SKU
// order so repeated runs produce identical logs.
func reconcileSnapshot(in *Input, snap event.Event) []incident.Incident {
	skus := make([]string, 0, len(snap.Snapshot))
	for sku := range snap.Snapshot {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	var out []incident.Incident
	for _, sku := range skus {
		div, diverged := in.Ledger.Reconcile(sku, snap.Snapshot[sku],
			in.Thresholds.InventoryAbsThreshold, in.Thresholds.InventoryPctThreshold)
		if diverged {
			out = append(out, incident.New(snap.Timestamp, OrderInventoryDiscrepancy,
				incident.InventoryDiscrepancy(div.SKU, div.Expected, div.Actual)))
		}
	}
	return out
}
