package rules

import (
	"sort"

	"github.com/openretail/storewatch/internal/incident"
)

// SystemCrash scans each station's fully merged, chronologically sorted
// stream of all event types and fires whenever consecutive events are
// separated by at least the gap threshold (inclusive). The incident is
// stamped with the timestamp of the event that ended the silence.
type SystemCrash struct{}

func (SystemCrash) Name() string { return incident.NameSystemCrash }

func (SystemCrash) Detect(in *Input) []incident.Incident {
	stations := make([]string, 0, len(in.Merged))
	for id := range in.Merged {
		stations = append(stations, id)
	}
	sort.Strings(stations)

	threshold := seconds(in.Thresholds.CrashGapThresholdS)
	var out []incident.Incident
	for _, id := range stations {
		events := in.Merged[id].Events()
		for i := 1; i < len(events); i++ {
			gap := events[i].Timestamp.Sub(events[i-1].Timestamp)
			if gap >= threshold {
				out = append(out, incident.New(events[i].Timestamp, OrderSystemCrash,
					incident.SystemCrash(id, int(gap.Seconds()))))
			}
		}
	}
	return out
}
