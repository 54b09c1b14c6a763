// Package source acquires raw records: batch JSONL files for offline runs
// and the live TCP feed for streaming runs.
package source

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openretail/storewatch/internal/engine"
	"github.com/openretail/storewatch/internal/event"
	"github.com/openretail/storewatch/internal/metrics"
)

// maxLineBytes bounds one feed line; inventory snapshots carry the whole
// SKU map on a single line.
const maxLineBytes = 1 << 20

// streamFiles maps the batch export file names to their sources.
var streamFiles = []struct {
	file   string
	source event.Source
}{
	{"pos_transactions.jsonl", event.SourcePOS},
	{"rfid_readings.jsonl", event.SourceRFID},
	{"queue_monitoring.jsonl", event.SourceQueue},
	{"product_recognition.jsonl", event.SourceRecognition},
	{"inventory_snapshots.jsonl", event.SourceSnapshot},
}

// LoadDir reads every stream file from a batch data directory. An
// unopenable file is fatal; individual undecodable or malformed lines are
// dropped, logged, and counted.
func LoadDir(dir string) (engine.Streams, error) {
	var s engine.Streams
	for _, sf := range streamFiles {
		events, err := loadJSONL(filepath.Join(dir, sf.file), sf.source)
		if err != nil {
			return engine.Streams{}, err
		}
		switch sf.source {
		case event.SourcePOS:
			s.POS = events
		case event.SourceRFID:
			s.RFID = events
		case event.SourceQueue:
			s.Queue = events
		case event.SourceRecognition:
			s.Recognition = events
		case event.SourceSnapshot:
			s.Snapshots = events
		}
	}
	if len(s.Snapshots) == 0 {
		return engine.Streams{}, errors.New("no inventory snapshots: initial inventory is required")
	}
	return s, nil
}

// LoadInitialInventory reads the first snapshot from the snapshots file,
// which seeds the streaming ledger. Missing or empty files are fatal.
func LoadInitialInventory(path string) (map[string]int, error) {
	events, err := loadJSONL(path, event.SourceSnapshot)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("initial inventory %s: no snapshots", path)
	}
	return events[0].Snapshot, nil
}

func loadJSONL(path string, src event.Source) ([]event.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stream %s: %w", path, err)
	}
	defer f.Close()

	var events []event.Event
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var raw event.RawRecord
		if err := json.Unmarshal(line, &raw); err != nil {
			metrics.RecordsRejected.WithLabelValues("decode").Inc()
			slog.Warn("dropping undecodable line", "file", path, "line", lineNo, "err", err)
			continue
		}
		ev, err := event.Normalize(src, raw)
		if err != nil {
			metrics.RecordsRejected.WithLabelValues("malformed").Inc()
			slog.Warn("dropping malformed record", "file", path, "line", lineNo, "err", err)
			continue
		}
		metrics.RecordsIngested.WithLabelValues(string(src)).Inc()
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read stream %s: %w", path, err)
	}
	return events, nil
}
