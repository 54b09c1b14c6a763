package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecordsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storewatch_records_ingested_total",
		Help: "Total number of sensor records ingested, labelled by source.",
	}, []string{"source"})

	RecordsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storewatch_records_rejected_total",
		Help: "Total number of records dropped, labelled by reason (decode, malformed).",
	}, []string{"reason"})

	IncidentsDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storewatch_incidents_detected_total",
		Help: "Total number of incidents detected, labelled by rule.",
	}, []string{"rule"})

	SinkAppendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storewatch_sink_append_errors_total",
		Help: "Total number of failed incident appends, labelled by sink.",
	}, []string{"sink"})

	LedgerSKUs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "storewatch_ledger_skus",
		Help: "Number of SKUs currently tracked by the inventory ledger.",
	})
)
