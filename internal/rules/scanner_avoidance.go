package rules

import (
	"github.com/openretail/storewatch/internal/event"
	"github.com/openretail/storewatch/internal/incident"
)

// ScannerAvoidance joins each POS transaction against scan-area RFID reads
// at the same station within the window. It fires once per RFID-read SKU
// the transaction did not scan, and once with the scanned SKU itself when
// no read corroborates it. Both halves are failed correlations; the
// matching half of the same join is SuccessOperation.
type ScannerAvoidance struct{}

func (ScannerAvoidance) Name() string { return incident.NameScannerAvoidance }

func (ScannerAvoidance) Detect(in *Input) []incident.Incident {
	radius := seconds(in.Thresholds.ScannerAvoidanceWindowS)
	var out []incident.Incident
	for _, pos := range in.POS {
		p := pos.POS
		if p.SKU == "" {
			// No SKU, no correlation possible.
			continue
		}
		matched := false
		emitted := make(map[string]bool)
		for _, r := range in.RFID[pos.StationID].InWindow(pos.Timestamp, radius) {
			rf := r.RFID
			if rf.Location != event.LocationInScanArea || rf.SKU == "" {
				continue
			}
			if rf.SKU == p.SKU {
				matched = true
				continue
			}
			if !emitted[rf.SKU] {
				emitted[rf.SKU] = true
				out = append(out, incident.New(pos.Timestamp, OrderScannerAvoidance,
					incident.ScannerAvoidance(pos.StationID, p.CustomerID, rf.SKU)))
			}
		}
		if !matched {
			out = append(out, incident.New(pos.Timestamp, OrderScannerAvoidance,
				incident.ScannerAvoidance(pos.StationID, p.CustomerID, p.SKU)))
		}
	}
	return out
}
