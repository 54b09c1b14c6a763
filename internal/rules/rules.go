// Package rules holds the eight correlation and anomaly-detection rules.
// Each rule is a pure function over read-only indexed streams plus named
// thresholds; the only mutable state is the inventory ledger, touched by
// the inventory timeline alone.
package rules

import (
	"time"

	"github.com/openretail/storewatch/internal/catalog"
	"github.com/openretail/storewatch/internal/config"
	"github.com/openretail/storewatch/internal/event"
	"github.com/openretail/storewatch/internal/incident"
	"github.com/openretail/storewatch/internal/ledger"
	"github.com/openretail/storewatch/internal/window"
)

// Declared rule order. Incidents with equal timestamps sort by this order
// in the final log, so it is part of the output contract.
const (
	OrderScannerAvoidance = iota
	OrderBarcodeSwitching
	OrderWeightDiscrepancy
	OrderLongQueue
	OrderLongWait
	OrderInventoryDiscrepancy
	OrderSystemCrash
	OrderSuccessOperation
)

// Input is the read-only view a rule detects over.
type Input struct {
	Thresholds config.Thresholds
	Catalog    catalog.Catalog
	Ledger     *ledger.Ledger

	// POS, Queue and Snapshots are chronological across all stations.
	POS       []event.Event
	Queue     []event.Event
	Snapshots []event.Event

	// RFID, Recognition and Merged are per-station chronological indexes.
	// Merged covers every source and feeds gap detection.
	RFID        map[string]*window.Station
	Recognition map[string]*window.Station
	Merged      map[string]*window.Station
}

// Rule is one detector. Detect returns zero or more incidents carrying
// provisional ids; final ids are the aggregator's business.
type Rule interface {
	Name() string
	Detect(in *Input) []incident.Incident
}

// All returns the rules in declared order.
func All() []Rule {
	return []Rule{
		ScannerAvoidance{},
		BarcodeSwitching{},
		WeightDiscrepancy{},
		LongQueue{},
		LongWait{},
		InventoryDiscrepancy{},
		SystemCrash{},
		SuccessOperation{},
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
