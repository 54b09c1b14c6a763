package event

import (
	"fmt"
	"time"
)

// RawRecord is one decoded sensor record before normalization. Two wire
// shapes exist: batch files carry station_id/timestamp/data at the top
// level, while the live feed wraps them under "event" next to a "dataset"
// tag. Both decode into this struct.
type RawRecord struct {
	Dataset   string         `json:"dataset"`
	Timestamp string         `json:"timestamp"`
	StationID string         `json:"station_id"`
	Data      map[string]any `json:"data"`
	Event     *InnerRecord   `json:"event"`
}

// InnerRecord is the nested record of the live-feed shape.
type InnerRecord struct {
	Timestamp string         `json:"timestamp"`
	StationID string         `json:"station_id"`
	Data      map[string]any `json:"data"`
}

// MalformedRecordError reports a record missing a required field. Such
// records are skipped; they never stop a run.
type MalformedRecordError struct {
	Source Source
	Field  string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: missing or invalid %q", e.Source, e.Field)
}

// timestampLayouts are tried in order. The simulator emits second-precision
// ISO-8601 without a zone; RFC3339 is accepted for completeness.
var timestampLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Normalize converts a raw record of the given source into a canonical
// Event. Records lacking a timestamp or station id are rejected with a
// *MalformedRecordError; every other field is optional and rule-dependent.
func Normalize(src Source, raw RawRecord) (Event, error) {
	ts, station, data := raw.Timestamp, raw.StationID, raw.Data
	if raw.Event != nil {
		if ts == "" {
			ts = raw.Event.Timestamp
		}
		if station == "" {
			station = raw.Event.StationID
		}
		if data == nil {
			data = raw.Event.Data
		}
	}

	if station == "" {
		return Event{}, &MalformedRecordError{Source: src, Field: "station_id"}
	}
	t, ok := parseTimestamp(ts)
	if !ok {
		return Event{}, &MalformedRecordError{Source: src, Field: "timestamp"}
	}

	ev := Event{StationID: station, Timestamp: t, Source: src}
	switch src {
	case SourcePOS:
		ev.POS = &POSData{
			CustomerID: stringField(data, "customer_id"),
			SKU:        stringField(data, "sku"),
			WeightG:    floatField(data, "weight_g"),
			Price:      floatField(data, "price"),
		}
	case SourceRFID:
		ev.RFID = &RFIDData{
			EPC:      stringField(data, "epc"),
			SKU:      stringField(data, "sku"),
			Location: stringField(data, "location"),
		}
	case SourceQueue:
		q := &QueueData{}
		if v := floatField(data, "customer_count"); v != nil {
			q.CustomerCount = int(*v)
		}
		if v := floatField(data, "average_dwell_time"); v != nil {
			q.AverageDwellTime = *v
		}
		ev.Queue = q
	case SourceRecognition:
		r := &RecognitionData{PredictedProduct: stringField(data, "predicted_product")}
		if v := floatField(data, "accuracy"); v != nil {
			r.Accuracy = *v
		}
		ev.Recognition = r
	case SourceSnapshot:
		snap := make(SnapshotData, len(data))
		for sku, v := range data {
			if f, ok := toFloat(v); ok {
				snap[sku] = int(f)
			}
		}
		ev.Snapshot = snap
	default:
		return Event{}, &MalformedRecordError{Source: src, Field: "source"}
	}
	return ev, nil
}

func stringField(data map[string]any, key string) string {
	if s, ok := data[key].(string); ok {
		return s
	}
	return ""
}

func floatField(data map[string]any, key string) *float64 {
	if f, ok := toFloat(data[key]); ok {
		return &f
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
