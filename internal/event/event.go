package event

import "time"

// Source identifies the sensor stream a record came from.
type Source string

const (
	SourcePOS         Source = "POS"
	SourceRFID        Source = "RFID"
	SourceQueue       Source = "QUEUE"
	SourceRecognition Source = "RECOGNITION"
	SourceSnapshot    Source = "INVENTORY_SNAPSHOT"
)

// datasetNames maps the feed's dataset tags to sources. The tags come
// straight from the store sensor simulator and are not under our control.
var datasetNames = map[string]Source{
	"POS_Transactions":       SourcePOS,
	"RFID_data":              SourceRFID,
	"Queue_monitor":          SourceQueue,
	"Product_recognism":      SourceRecognition,
	"Current_inventory_data": SourceSnapshot,
}

// SourceFromDataset resolves a feed dataset tag to its Source.
func SourceFromDataset(name string) (Source, bool) {
	s, ok := datasetNames[name]
	return s, ok
}

// Event is the canonical model for one raw sensor observation. Exactly one
// payload pointer is non-nil, matching Source. Events are immutable after
// normalization.
type Event struct {
	StationID string
	Timestamp time.Time
	Source    Source

	POS         *POSData
	RFID        *RFIDData
	Queue       *QueueData
	Recognition *RecognitionData
	Snapshot    SnapshotData
}

// POSData is one checkout transaction. SKU and CustomerID may be absent
// (empty), in which case no cross-stream correlation is possible on the
// missing field. WeightG is nil when the scale reported nothing.
type POSData struct {
	CustomerID string
	SKU        string
	WeightG    *float64
	Price      *float64
}

// RFIDData is one tag read. Location distinguishes reads inside the scan
// area from shelf antennas.
type RFIDData struct {
	EPC      string
	SKU      string
	Location string
}

// LocationInScanArea marks RFID reads taken by the checkout-station antenna.
const LocationInScanArea = "IN_SCAN_AREA"

// QueueData is one queue-occupancy sample. Absent fields decode as zero,
// which can never exceed a threshold.
type QueueData struct {
	CustomerCount    int
	AverageDwellTime float64
}

// RecognitionData is one vision-system prediction.
type RecognitionData struct {
	PredictedProduct string
	Accuracy         float64
}

// SnapshotData is a periodic per-SKU inventory count.
type SnapshotData map[string]int
