package rules

import (
	"math"

	"github.com/openretail/storewatch/internal/incident"
)

// WeightDiscrepancy is a stateless per-transaction check of the scanned
// weight against the catalog weight. A weight exactly on the tolerance
// boundary does not trigger; SKUs absent from the catalog are skipped
// silently.
type WeightDiscrepancy struct{}

func (WeightDiscrepancy) Name() string { return incident.NameWeightDiscrepancy }

func (WeightDiscrepancy) Detect(in *Input) []incident.Incident {
	var out []incident.Incident
	for _, pos := range in.POS {
		p := pos.POS
		if p.SKU == "" || p.WeightG == nil {
			continue
		}
		expected, ok := in.Catalog.ExpectedWeight(p.SKU)
		if !ok {
			continue
		}
		tolerance := expected * in.Thresholds.WeightTolerancePct / 100
		if math.Abs(*p.WeightG-expected) > tolerance {
			out = append(out, incident.New(pos.Timestamp, OrderWeightDiscrepancy,
				incident.WeightDiscrepancy(pos.StationID, p.CustomerID, p.SKU, expected, *p.WeightG)))
		}
	}
	return out
}
