// Package window maintains per-station chronological event indexes used by
// the correlation rules for bounded time-window lookups.
package window

import (
	"sort"
	"time"

	"github.com/openretail/storewatch/internal/event"
)

// Station is one station's chronological event list. Batch indexing
// pre-sorts it. Incremental appends preserve order only as far as the feed
// does; a late record flips the window into linear-scan lookups until the
// next prune restores order.
type Station struct {
	events   []event.Event
	unsorted bool
}

// Index groups events by station id, each station sorted ascending by
// timestamp. The sort is stable: ties keep original input order.
func Index(events []event.Event) map[string]*Station {
	byStation := make(map[string]*Station)
	for _, ev := range events {
		st := byStation[ev.StationID]
		if st == nil {
			st = &Station{}
			byStation[ev.StationID] = st
		}
		st.events = append(st.events, ev)
	}
	for _, st := range byStation {
		sort.SliceStable(st.events, func(i, j int) bool {
			return st.events[i].Timestamp.Before(st.events[j].Timestamp)
		})
	}
	return byStation
}

// Append adds one event in arrival order, O(1) amortized.
func (s *Station) Append(ev event.Event) {
	if n := len(s.events); n > 0 && ev.Timestamp.Before(s.events[n-1].Timestamp) {
		s.unsorted = true
	}
	s.events = append(s.events, ev)
}

// Len returns the number of indexed events.
func (s *Station) Len() int {
	if s == nil {
		return 0
	}
	return len(s.events)
}

// Events returns the underlying chronological slice. Callers must not
// mutate it.
func (s *Station) Events() []event.Event {
	if s == nil {
		return nil
	}
	return s.events
}

// Last returns the most recently appended event.
func (s *Station) Last() (event.Event, bool) {
	if s == nil || len(s.events) == 0 {
		return event.Event{}, false
	}
	return s.events[len(s.events)-1], true
}

// InWindow returns all events with |timestamp - center| <= radius,
// inclusive on both boundaries, in position order. Sorted windows are
// scanned from a binary-search lower bound; windows that received a late
// record fall back to a full linear scan.
func (s *Station) InWindow(center time.Time, radius time.Duration) []event.Event {
	if s == nil || len(s.events) == 0 {
		return nil
	}
	lo, hi := center.Add(-radius), center.Add(radius)

	start := 0
	if !s.unsorted {
		start = sort.Search(len(s.events), func(i int) bool {
			return !s.events[i].Timestamp.Before(lo)
		})
	}

	var out []event.Event
	for i := start; i < len(s.events); i++ {
		ts := s.events[i].Timestamp
		if ts.After(hi) {
			if !s.unsorted {
				break
			}
			continue
		}
		if !ts.Before(lo) {
			out = append(out, s.events[i])
		}
	}
	return out
}

// Prune drops events older than cutoff from the front of the window. Used
// by the streaming engine to bound per-station state. A station holding
// late records is re-sorted here so its buffer cannot grow without bound.
func (s *Station) Prune(cutoff time.Time) {
	if s == nil || len(s.events) == 0 {
		return
	}
	if s.unsorted {
		sort.SliceStable(s.events, func(i, j int) bool {
			return s.events[i].Timestamp.Before(s.events[j].Timestamp)
		})
		s.unsorted = false
	}
	n := 0
	for n < len(s.events) && s.events[n].Timestamp.Before(cutoff) {
		n++
	}
	if n > 0 {
		s.events = append(s.events[:0], s.events[n:]...)
	}
}
