package sink

import (
	"context"
	"sync"

	"github.com/openretail/storewatch/internal/incident"
)

// Memory is an in-process sink used by tests and the stats endpoint.
type Memory struct {
	mu        sync.Mutex
	incidents []incident.Incident
}

// NewMemory creates an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Name() string { return "memory" }

func (m *Memory) Append(_ context.Context, inc incident.Incident) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.incidents = append(m.incidents, inc)
	return nil
}

func (m *Memory) Close() error { return nil }

// Incidents returns a copy of everything appended so far.
func (m *Memory) Incidents() []incident.Incident {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]incident.Incident, len(m.incidents))
	copy(out, m.incidents)
	return out
}
