package rules

import (
	"github.com/openretail/storewatch/internal/incident"
)

// SuccessOperation is the matching half of the POS/RFID join: an RFID read
// at the same station carrying the scanned SKU within the window confirms
// a clean checkout. It fires at most once per transaction.
type SuccessOperation struct{}

func (SuccessOperation) Name() string { return incident.NameSuccessOperation }

func (SuccessOperation) Detect(in *Input) []incident.Incident {
	radius := seconds(in.Thresholds.SuccessWindowS)
	var out []incident.Incident
	for _, pos := range in.POS {
		p := pos.POS
		if p.SKU == "" {
			continue
		}
		for _, r := range in.RFID[pos.StationID].InWindow(pos.Timestamp, radius) {
			if r.RFID.SKU == p.SKU {
				out = append(out, incident.New(pos.Timestamp, OrderSuccessOperation,
					incident.SuccessOperation(pos.StationID, p.CustomerID, p.SKU)))
				break
			}
		}
	}
	return out
}
