package incident

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Log collects incidents from all rules and assigns final event ids.
//
// Batch mode calls Add per rule and Finalize exactly once after every rule
// has completed. Streaming mode calls Issue per incident as it is emitted;
// the feed arrives in timestamp order, so issue order is final order.
type Log struct {
	mu        sync.Mutex
	incidents []Incident
	next      int
	finalized bool
}

// NewLog creates an empty incident log.
func NewLog() *Log {
	return &Log{}
}

// Add appends a rule's incidents, stamping emission order within the batch.
func (l *Log) Add(batch ...Incident) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range batch {
		batch[i].Seq = len(l.incidents)
		l.incidents = append(l.incidents, batch[i])
	}
}

// Finalize sorts all collected incidents by timestamp (ties broken by
// declared rule order, then emission order) and reassigns dense zero-based
// event ids. Provisional detection ids are discarded here. Finalize must
// run exactly once; later calls return the already-finalized log.
func (l *Log) Finalize() []Incident {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finalized {
		return l.incidents
	}
	sort.SliceStable(l.incidents, func(i, j int) bool {
		a, b := l.incidents[i], l.incidents[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Seq < b.Seq
	})
	for i := range l.incidents {
		l.incidents[i].EventID = FormatID(i)
	}
	l.finalized = true
	return l.incidents
}

// Issue assigns the next sequential event id. Used on the streaming path,
// where the append-only sink makes a post-hoc renumber impossible. Issued
// incidents are not retained; the sinks own them, and a long-lived feed
// would otherwise accumulate them without bound.
func (l *Log) Issue(inc Incident) Incident {
	l.mu.Lock()
	defer l.mu.Unlock()
	inc.EventID = FormatID(l.next)
	inc.Seq = l.next
	l.next++
	return inc
}

// Len returns the number of incidents collected or issued so far.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.incidents) + l.next
}

// FormatID renders a dense zero-based index as an event id: E000, E001, …
// Padding widens past three digits as the index grows.
func FormatID(idx int) string {
	return fmt.Sprintf("E%03d", idx)
}

// WriteJSONL writes one compact JSON object per incident per line.
func WriteJSONL(w io.Writer, incidents []Incident) error {
	for _, inc := range incidents {
		line, err := json.Marshal(inc)
		if err != nil {
			return fmt.Errorf("marshal incident %s: %w", inc.EventID, err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("write incident %s: %w", inc.EventID, err)
		}
	}
	return nil
}
