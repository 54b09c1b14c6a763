package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/openretail/storewatch/internal/incident"
)

// jsonlSink appends one JSON line per incident to a file, syncing after
// every write so an interrupted run leaves a valid, truncation-free log.
type jsonlSink struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

// NewJSONL creates (truncating) the output file. Failing to open it is
// fatal to the run.
func NewJSONL(path string) (Sink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", path, err)
	}
	return &jsonlSink{f: f, path: path}, nil
}

func (s *jsonlSink) Name() string { return "jsonl" }

func (s *jsonlSink) Append(_ context.Context, inc incident.Incident) error {
	line, err := json.Marshal(inc)
	if err != nil {
		return fmt.Errorf("marshal incident %s: %w", inc.EventID, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return s.f.Sync()
}

func (s *jsonlSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
