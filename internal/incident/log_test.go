package incident_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/openretail/storewatch/internal/incident"
)

func at(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		t.Fatalf("bad timestamp %q: %v", s, err)
	}
	return parsed
}

func TestFormatID(t *testing.T) {
	cases := []struct {
		idx  int
		want string
	}{
		{0, "E000"},
		{7, "E007"},
		{42, "E042"},
		{999, "E999"},
		{1000, "E1000"},
	}
	for _, tc := range cases {
		if got := incident.FormatID(tc.idx); got != tc.want {
			t.Errorf("FormatID(%d) = %q, want %q", tc.idx, got, tc.want)
		}
	}
}

func TestFinalize_SortAndDenseIDs(t *testing.T) {
	log := incident.NewLog()
	early := at(t, "2025-08-13T16:00:00")
	late := at(t, "2025-08-13T16:05:00")

	// Added out of chronological order, the way per-rule batches arrive.
	log.Add(incident.New(late, 3, incident.LongQueue("SCC1", 7)))
	log.Add(incident.New(early, 0, incident.ScannerAvoidance("SCC1", "C001", "1234")))

	out := log.Finalize()
	if len(out) != 2 {
		t.Fatalf("expected 2 incidents, got %d", len(out))
	}
	if out[0].EventID != "E000" || out[1].EventID != "E001" {
		t.Errorf("ids not dense: %q, %q", out[0].EventID, out[1].EventID)
	}
	if !out[0].Timestamp.Equal(early) {
		t.Errorf("first incident is not the earliest: %v", out[0].Timestamp)
	}
}

func TestFinalize_TieBreaksByRuleOrder(t *testing.T) {
	log := incident.NewLog()
	ts := at(t, "2025-08-13T16:00:00")

	// Same timestamp; the rule declared later is added first.
	log.Add(incident.New(ts, 4, incident.LongWait("SCC1", 400)))
	log.Add(incident.New(ts, 3, incident.LongQueue("SCC1", 7)))

	out := log.Finalize()
	if _, ok := out[0].Data.(incident.LongQueueData); !ok {
		t.Errorf("expected LongQueue first at equal timestamps, got %T", out[0].Data)
	}
	if _, ok := out[1].Data.(incident.LongWaitData); !ok {
		t.Errorf("expected LongWait second, got %T", out[1].Data)
	}
}

func TestFinalize_RunsOnce(t *testing.T) {
	log := incident.NewLog()
	log.Add(incident.New(at(t, "2025-08-13T16:00:00"), 0, incident.ScannerAvoidance("SCC1", "C001", "1234")))

	first := log.Finalize()
	second := log.Finalize()
	if len(first) != len(second) || first[0].EventID != second[0].EventID {
		t.Errorf("second Finalize changed the log: %+v vs %+v", first, second)
	}
}

func TestIssue_SequentialIDs(t *testing.T) {
	log := incident.NewLog()
	ts := at(t, "2025-08-13T16:00:00")

	a := log.Issue(incident.New(ts, 3, incident.LongQueue("SCC1", 6)))
	b := log.Issue(incident.New(ts, 4, incident.LongWait("SCC1", 400)))
	if a.EventID != "E000" || b.EventID != "E001" {
		t.Errorf("issue order ids = %q, %q", a.EventID, b.EventID)
	}
	if log.Len() != 2 {
		t.Errorf("Len = %d, want 2", log.Len())
	}
	// Issued incidents belong to the sinks; the log keeps only the count.
	if retained := log.Finalize(); len(retained) != 0 {
		t.Errorf("issued incidents were retained: %d", len(retained))
	}
}

func TestMarshalJSON_WireShape(t *testing.T) {
	inc := incident.New(at(t, "2025-08-13T16:05:45"), 2,
		incident.WeightDiscrepancy("SCC1", "C056", "PRD_S_04", 150, 104))
	inc.EventID = "E004"

	raw, err := json.Marshal(inc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"timestamp":"2025-08-13T16:05:45","event_id":"E004","event_data":{"event_name":"Weight Discrepancies","station_id":"SCC1","customer_id":"C056","product_sku":"PRD_S_04","expected_weight":150,"actual_weight":104}}`
	if string(raw) != want {
		t.Errorf("wire shape mismatch:\n got %s\nwant %s", raw, want)
	}
}

func TestMarshalJSON_InventoryFieldCasing(t *testing.T) {
	inc := incident.New(at(t, "2025-08-13T17:00:00"), 5,
		incident.InventoryDiscrepancy("PRD_F_03", 100, 90))
	inc.EventID = "E000"

	raw, err := json.Marshal(inc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"SKU"`, `"Expected_Inventory"`, `"Actual_Inventory"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("output missing key %s: %s", key, raw)
		}
	}
}

func TestWriteJSONL(t *testing.T) {
	log := incident.NewLog()
	log.Add(incident.New(at(t, "2025-08-13T16:00:00"), 3, incident.LongQueue("SCC1", 7)))
	log.Add(incident.New(at(t, "2025-08-13T16:01:00"), 3, incident.LongQueue("SCC2", 8)))

	var buf bytes.Buffer
	if err := incident.WriteJSONL(&buf, log.Finalize()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		var decoded struct {
			EventID string `json:"event_id"`
		}
		if err := json.Unmarshal([]byte(line), &decoded); err != nil {
			t.Fatalf("line %d not valid JSON: %v", i, err)
		}
		if want := incident.FormatID(i); decoded.EventID != want {
			t.Errorf("line %d event_id = %q, want %q", i, decoded.EventID, want)
		}
	}
}
