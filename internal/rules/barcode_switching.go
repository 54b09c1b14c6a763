package rules

import (
	"github.com/openretail/storewatch/internal/incident"
)

// minRecognitionAccuracy gates vision predictions; anything at or below is
// too uncertain to contradict a scan.
const minRecognitionAccuracy = 0.5

// BarcodeSwitching compares each POS scan against confident vision
// predictions at the same station within the window. The first qualifying
// prediction wins; a transaction fires at most once.
type BarcodeSwitching struct{}

func (BarcodeSwitching) Name() string { return incident.NameBarcodeSwitching }

func (BarcodeSwitching) Detect(in *Input) []incident.Incident {
	radius := seconds(in.Thresholds.BarcodeSwitchWindowS)
	var out []incident.Incident
	for _, pos := range in.POS {
		p := pos.POS
		if p.SKU == "" {
			continue
		}
		for _, r := range in.Recognition[pos.StationID].InWindow(pos.Timestamp, radius) {
			rec := r.Recognition
			if rec.Accuracy <= minRecognitionAccuracy || rec.PredictedProduct == "" {
				continue
			}
			if rec.PredictedProduct != p.SKU {
				out = append(out, incident.New(pos.Timestamp, OrderBarcodeSwitching,
					incident.BarcodeSwitching(pos.StationID, p.CustomerID, rec.PredictedProduct, p.SKU)))
				break
			}
		}
	}
	return out
}
