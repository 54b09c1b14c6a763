package source_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openretail/storewatch/internal/event"
	"github.com/openretail/storewatch/internal/source"
)

func writeDataDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func fullDataDir(t *testing.T) string {
	return writeDataDir(t, map[string]string{
		"pos_transactions.jsonl":    `{"timestamp":"2025-08-13T16:00:01","station_id":"SCC1","data":{"customer_id":"C056","sku":"PRD_S_04","weight_g":150.0}}` + "\n",
		"rfid_readings.jsonl":       `{"timestamp":"2025-08-13T16:00:00","station_id":"SCC1","data":{"epc":"EPC001","sku":"PRD_S_04","location":"IN_SCAN_AREA"}}` + "\n",
		"queue_monitoring.jsonl":    `{"timestamp":"2025-08-13T16:00:00","station_id":"SCC1","data":{"customer_count":3,"average_dwell_time":45.0}}` + "\n",
		"product_recognition.jsonl": `{"timestamp":"2025-08-13T16:00:00","station_id":"SCC1","data":{"predicted_product":"PRD_S_04","accuracy":0.9}}` + "\n",
		"inventory_snapshots.jsonl": `{"timestamp":"2025-08-13T16:00:00","station_id":"INV1","data":{"PRD_S_04":40}}` + "\n",
	})
}

func TestLoadDir(t *testing.T) {
	s, err := source.LoadDir(fullDataDir(t))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.POS) != 1 || len(s.RFID) != 1 || len(s.Queue) != 1 || len(s.Recognition) != 1 || len(s.Snapshots) != 1 {
		t.Errorf("unexpected stream sizes: %d %d %d %d %d",
			len(s.POS), len(s.RFID), len(s.Queue), len(s.Recognition), len(s.Snapshots))
	}
	if s.POS[0].POS.SKU != "PRD_S_04" {
		t.Errorf("unexpected POS record: %+v", s.POS[0].POS)
	}
	if s.RFID[0].RFID.Location != event.LocationInScanArea {
		t.Errorf("unexpected RFID record: %+v", s.RFID[0].RFID)
	}
}

func TestLoadDir_MissingFileIsFatal(t *testing.T) {
	dir := fullDataDir(t)
	if err := os.Remove(filepath.Join(dir, "rfid_readings.jsonl")); err != nil {
		t.Fatal(err)
	}
	if _, err := source.LoadDir(dir); err == nil {
		t.Fatal("expected error for missing stream file")
	}
}

func TestLoadDir_NoSnapshotsIsFatal(t *testing.T) {
	dir := fullDataDir(t)
	if err := os.WriteFile(filepath.Join(dir, "inventory_snapshots.jsonl"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := source.LoadDir(dir); err == nil {
		t.Fatal("expected error for empty snapshots file")
	}
}

func TestLoadDir_DropsBadLines(t *testing.T) {
	dir := fullDataDir(t)
	body := "not json at all\n" +
		`{"timestamp":"2025-08-13T16:00:01","data":{"sku":"PRD_S_04"}}` + "\n" + // no station_id
		`{"timestamp":"2025-08-13T16:00:02","station_id":"SCC1","data":{"customer_id":"C001","sku":"PRD_S_04"}}` + "\n"
	if err := os.WriteFile(filepath.Join(dir, "pos_transactions.jsonl"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := source.LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.POS) != 1 {
		t.Errorf("expected 1 surviving POS record, got %d", len(s.POS))
	}
}

func TestLoadInitialInventory(t *testing.T) {
	dir := writeDataDir(t, map[string]string{
		"inventory_snapshots.jsonl": `{"timestamp":"2025-08-13T16:00:00","station_id":"INV1","data":{"PRD_S_04":40,"PRD_F_03":100}}` + "\n" +
			`{"timestamp":"2025-08-13T17:00:00","station_id":"INV1","data":{"PRD_S_04":10}}` + "\n",
	})

	initial, err := source.LoadInitialInventory(filepath.Join(dir, "inventory_snapshots.jsonl"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	// Only the first snapshot seeds the ledger.
	if len(initial) != 2 || initial["PRD_S_04"] != 40 || initial["PRD_F_03"] != 100 {
		t.Errorf("unexpected initial inventory: %v", initial)
	}
}

func TestLoadInitialInventory_Empty(t *testing.T) {
	dir := writeDataDir(t, map[string]string{"inventory_snapshots.jsonl": ""})
	if _, err := source.LoadInitialInventory(filepath.Join(dir, "inventory_snapshots.jsonl")); err == nil {
		t.Fatal("expected error for empty snapshots file")
	}
}
