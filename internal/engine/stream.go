package engine

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"

	"github.com/openretail/storewatch/internal/catalog"
	"github.com/openretail/storewatch/internal/config"
	"github.com/openretail/storewatch/internal/event"
	"github.com/openretail/storewatch/internal/incident"
	"github.com/openretail/storewatch/internal/ledger"
	"github.com/openretail/storewatch/internal/metrics"
	"github.com/openretail/storewatch/internal/rules"
	"github.com/openretail/storewatch/internal/sink"
	"github.com/openretail/storewatch/internal/window"
)

// Processor is the streaming engine. It owns all per-station running state
// (recent RFID reads, recent recognitions, last-seen times) and the
// inventory ledger, processes one record at a time, and appends incidents
// to every sink with an immediate flush.
//
// A Processor is single-threaded per feed: Process must not be called
// concurrently. Config swaps are the only cross-goroutine access and go
// through an atomic pointer.
type Processor struct {
	conf atomic.Pointer[config.Config]

	cat   catalog.Catalog
	led   *ledger.Ledger
	log   *incident.Log
	sinks []sink.Sink

	rfid     map[string]*window.Station
	recog    map[string]*window.Station
	lastSeen map[string]time.Time

	records   atomic.Uint64
	incidents atomic.Uint64
}

// correlationRules are the per-transaction rules the processor evaluates on
// POS arrival, in declared order. A live feed cannot look forward in time,
// so these fire against the lookback half of their windows.
var correlationRules = []rules.Rule{
	rules.ScannerAvoidance{},
	rules.BarcodeSwitching{},
	rules.WeightDiscrepancy{},
	rules.SuccessOperation{},
}

// sampleRules are the stateless per-sample checks run on queue records.
var sampleRules = []rules.Rule{
	rules.LongQueue{},
	rules.LongWait{},
}

// NewProcessor creates a streaming engine. The ledger must already be
// seeded from the initial inventory snapshot.
func NewProcessor(cfg *config.Config, cat catalog.Catalog, led *ledger.Ledger, log *incident.Log, sinks []sink.Sink) *Processor {
	p := &Processor{
		cat:      cat,
		led:      led,
		log:      log,
		sinks:    sinks,
		rfid:     make(map[string]*window.Station),
		recog:    make(map[string]*window.Station),
		lastSeen: make(map[string]time.Time),
	}
	p.conf.Store(cfg)
	metrics.LedgerSKUs.Set(float64(led.Size()))
	return p
}

// SwapConfig atomically replaces the thresholds (used on hot-reload).
func (p *Processor) SwapConfig(cfg *config.Config) {
	p.conf.Store(cfg)
}

// Records returns the number of records processed.
func (p *Processor) Records() uint64 { return p.records.Load() }

// Incidents returns the number of incidents emitted.
func (p *Processor) Incidents() uint64 { return p.incidents.Load() }

// LedgerSize returns the number of SKUs the ledger tracks.
func (p *Processor) LedgerSize() int { return p.led.Size() }

// Process handles one normalized record: update per-station state, run
// every applicable rule incrementally, and emit incidents to the sinks.
// The returned slice carries the issued incidents, mainly for tests.
func (p *Processor) Process(ctx context.Context, ev event.Event) []incident.Incident {
	p.records.Add(1)
	metrics.RecordsIngested.WithLabelValues(string(ev.Source)).Inc()

	th := p.conf.Load().Thresholds
	var detected []incident.Incident

	// Gap detection runs over the merged stream: every source counts as a
	// sign of life for its station.
	if last, ok := p.lastSeen[ev.StationID]; ok {
		if gap := ev.Timestamp.Sub(last); gap >= seconds(th.CrashGapThresholdS) {
			detected = append(detected, incident.New(ev.Timestamp, rules.OrderSystemCrash,
				incident.SystemCrash(ev.StationID, int(gap.Seconds()))))
		}
	}
	if ev.Timestamp.After(p.lastSeen[ev.StationID]) {
		p.lastSeen[ev.StationID] = ev.Timestamp
	}

	switch ev.Source {
	case event.SourceRFID:
		st := p.station(p.rfid, ev.StationID)
		st.Append(ev)
		st.Prune(ev.Timestamp.Add(-seconds(maxInt(th.SuccessWindowS, th.ScannerAvoidanceWindowS))))

	case event.SourceRecognition:
		st := p.station(p.recog, ev.StationID)
		st.Append(ev)
		st.Prune(ev.Timestamp.Add(-seconds(th.BarcodeSwitchWindowS)))

	case event.SourcePOS:
		in := &rules.Input{
			Thresholds:  th,
			Catalog:     p.cat,
			Ledger:      p.led,
			POS:         []event.Event{ev},
			RFID:        p.rfid,
			Recognition: p.recog,
		}
		for _, r := range correlationRules {
			detected = append(detected, r.Detect(in)...)
		}
		p.led.Apply(ev.POS.SKU)

	case event.SourceQueue:
		in := &rules.Input{Thresholds: th, Queue: []event.Event{ev}}
		for _, r := range sampleRules {
			detected = append(detected, r.Detect(in)...)
		}

	case event.SourceSnapshot:
		detected = append(detected, p.reconcile(ev, th)...)
	}

	return p.emit(ctx, detected)
}

// reconcile applies one inventory snapshot against the ledger, SKU by SKU
// in sorted order.
func (p *Processor) reconcile(ev event.Event, th config.Thresholds) []incident.Incident {
	skus := make([]string, 0, len(ev.Snapshot))
	for sku := range ev.Snapshot {
		skus = append(skus, sku)
	}
	sort.Strings(skus)

	var out []incident.Incident
	for _, sku := range skus {
		div, diverged := p.led.Reconcile(sku, ev.Snapshot[sku],
			th.InventoryAbsThreshold, th.InventoryPctThreshold)
		if diverged {
			out = append(out, incident.New(ev.Timestamp, rules.OrderInventoryDiscrepancy,
				incident.InventoryDiscrepancy(div.SKU, div.Expected, div.Actual)))
		}
	}
	metrics.LedgerSKUs.Set(float64(p.led.Size()))
	return out
}

// emit issues final ids and appends to every sink. Sink failures are
// logged and counted but never stop the feed.
func (p *Processor) emit(ctx context.Context, detected []incident.Incident) []incident.Incident {
	issued := make([]incident.Incident, 0, len(detected))
	for _, inc := range detected {
		final := p.log.Issue(inc)
		p.incidents.Add(1)
		metrics.IncidentsDetected.WithLabelValues(final.Data.EventName()).Inc()
		for _, s := range p.sinks {
			if err := s.Append(ctx, final); err != nil {
				metrics.SinkAppendErrors.WithLabelValues(s.Name()).Inc()
				slog.Error("sink append failed", "sink", s.Name(), "event_id", final.EventID, "err", err)
			}
		}
		issued = append(issued, final)
	}
	return issued
}

func (p *Processor) station(m map[string]*window.Station, id string) *window.Station {
	st := m[id]
	if st == nil {
		st = &window.Station{}
		m[id] = st
	}
	return st
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
