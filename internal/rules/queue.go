package rules

import (
	"github.com/openretail/storewatch/internal/incident"
)

// LongQueue fires on queue samples whose customer count strictly exceeds
// the threshold. A count exactly at the threshold does not trigger.
type LongQueue struct{}

func (LongQueue) Name() string { return incident.NameLongQueue }

func (LongQueue) Detect(in *Input) []incident.Incident {
	var out []incident.Incident
	for _, ev := range in.Queue {
		q := ev.Queue
		if q.CustomerCount > in.Thresholds.QueueCountThreshold {
			out = append(out, incident.New(ev.Timestamp, OrderLongQueue,
				incident.LongQueue(ev.StationID, q.CustomerCount)))
		}
	}
	return out
}

// LongWait fires on queue samples whose average dwell time strictly
// exceeds the threshold.
type LongWait struct{}

func (LongWait) Name() string { return incident.NameLongWait }

func (LongWait) Detect(in *Input) []incident.Incident {
	var out []incident.Incident
	for _, ev := range in.Queue {
		q := ev.Queue
		if q.AverageDwellTime > in.Thresholds.WaitTimeThresholdS {
			out = append(out, incident.New(ev.Timestamp, OrderLongWait,
				incident.LongWait(ev.StationID, q.AverageDwellTime)))
		}
	}
	return out
}
