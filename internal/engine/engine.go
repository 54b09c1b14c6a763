// Package engine orchestrates detection: batch runs over fully
// materialized streams, streaming runs per record against accumulated
// per-station state.
package engine

import (
	"context"
	"log/slog"
	"sort"

	"github.com/openretail/storewatch/internal/catalog"
	"github.com/openretail/storewatch/internal/config"
	"github.com/openretail/storewatch/internal/event"
	"github.com/openretail/storewatch/internal/incident"
	"github.com/openretail/storewatch/internal/ledger"
	"github.com/openretail/storewatch/internal/metrics"
	"github.com/openretail/storewatch/internal/rules"
	"github.com/openretail/storewatch/internal/window"
)

// Streams holds the fully materialized batch inputs, one slice per source.
type Streams struct {
	POS         []event.Event
	RFID        []event.Event
	Queue       []event.Event
	Recognition []event.Event
	Snapshots   []event.Event
}

func sortChronological(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// BuildInput sorts the streams, builds the per-station indexes the rules
// look up, and seeds the inventory ledger from the first snapshot.
func BuildInput(th config.Thresholds, cat catalog.Catalog, s Streams) *rules.Input {
	sortChronological(s.POS)
	sortChronological(s.RFID)
	sortChronological(s.Queue)
	sortChronological(s.Recognition)
	sortChronological(s.Snapshots)

	merged := make([]event.Event, 0, len(s.POS)+len(s.RFID)+len(s.Queue)+len(s.Recognition)+len(s.Snapshots))
	merged = append(merged, s.POS...)
	merged = append(merged, s.RFID...)
	merged = append(merged, s.Queue...)
	merged = append(merged, s.Recognition...)
	merged = append(merged, s.Snapshots...)

	var led *ledger.Ledger
	if len(s.Snapshots) > 0 {
		led = ledger.New(s.Snapshots[0].Snapshot)
		metrics.LedgerSKUs.Set(float64(led.Size()))
	}

	return &rules.Input{
		Thresholds:  th,
		Catalog:     cat,
		Ledger:      led,
		POS:         s.POS,
		Queue:       s.Queue,
		Snapshots:   s.Snapshots,
		RFID:        window.Index(s.RFID),
		Recognition: window.Index(s.Recognition),
		Merged:      window.Index(merged),
	}
}

// Batch runs every rule over a read-only input and collects incidents into
// the log. Rules run concurrently except the weight/inventory pair, which
// shares the ledger timeline and runs as one sequential group.
type Batch struct {
	workers int
}

// NewBatch creates a batch engine.
func NewBatch(conf config.EngineConf) *Batch {
	workers := conf.RuleWorkers
	if workers < 1 {
		workers = 1
	}
	return &Batch{workers: workers}
}

// ruleGroups partitions the declared rules into units that may run
// concurrently with each other. Group members run sequentially in declared
// order.
func ruleGroups() [][]rules.Rule {
	var groups [][]rules.Rule
	var ledgerGroup []rules.Rule
	for _, r := range rules.All() {
		switch r.(type) {
		case rules.WeightDiscrepancy, rules.InventoryDiscrepancy:
			ledgerGroup = append(ledgerGroup, r)
		default:
			groups = append(groups, []rules.Rule{r})
		}
	}
	return append(groups, ledgerGroup)
}

// Run executes all rules and returns the total number of incidents
// collected. The log is not finalized here; finalization is the caller's
// single post-detection step.
func (b *Batch) Run(ctx context.Context, in *rules.Input, log *incident.Log) int {
	groups := ruleGroups()
	pool := newWorkerPool(ctx, b.workers, len(groups), func(ctx context.Context, group []rules.Rule) {
		for _, r := range group {
			detected := r.Detect(in)
			metrics.IncidentsDetected.WithLabelValues(r.Name()).Add(float64(len(detected)))
			slog.Debug("rule complete", "rule", r.Name(), "incidents", len(detected))
			log.Add(detected...)
		}
	})
	for _, group := range groups {
		pool.Submit(group)
	}
	pool.Drain()
	return log.Len()
}
