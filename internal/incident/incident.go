package incident

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event names as they appear in the output log. Case and wording are part
// of the wire contract with downstream dashboards.
const (
	NameScannerAvoidance     = "Scanner Avoidance"
	NameBarcodeSwitching     = "Barcode Switching"
	NameWeightDiscrepancy    = "Weight Discrepancies"
	NameLongQueue            = "Long Queue Length"
	NameLongWait             = "Long Wait Time"
	NameInventoryDiscrepancy = "Inventory Discrepancy"
	NameSystemCrash          = "Unexpected Systems Crash"
	NameSuccessOperation     = "Success Operation"
)

// Data is the closed set of per-kind event_data payloads.
type Data interface {
	EventName() string
}

// Incident is one detected anomaly or notable event. It is write-once:
// after detection only the EventID changes, and only in the final
// aggregation pass (batch) or at issue time (streaming).
type Incident struct {
	// EventID is a provisional uuid at detection time. Per-rule ids carry
	// no meaning; the log is the sole authority for final E-numbers.
	EventID   string
	Timestamp time.Time
	Data      Data

	// Rule is the declared rule order, the timestamp tie-break.
	Rule int
	// Seq is the emission order within the rule.
	Seq int
}

// New creates an incident with a provisional id.
func New(ts time.Time, rule int, data Data) Incident {
	return Incident{
		EventID:   uuid.NewString(),
		Timestamp: ts,
		Data:      data,
		Rule:      rule,
	}
}

// timestampLayout is second-precision ISO-8601, matching the feed.
const timestampLayout = "2006-01-02T15:04:05"

type wireIncident struct {
	Timestamp string `json:"timestamp"`
	EventID   string `json:"event_id"`
	EventData Data   `json:"event_data"`
}

// MarshalJSON emits the wire shape: timestamp, event_id, event_data.
func (i Incident) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireIncident{
		Timestamp: i.Timestamp.Format(timestampLayout),
		EventID:   i.EventID,
		EventData: i.Data,
	})
}

// ScannerAvoidanceData reports an item that passed the scan area without a
// matching scan.
type ScannerAvoidanceData struct {
	Name       string `json:"event_name"`
	StationID  string `json:"station_id"`
	CustomerID string `json:"customer_id"`
	ProductSKU string `json:"product_sku"`
}

func (d ScannerAvoidanceData) EventName() string { return NameScannerAvoidance }

func ScannerAvoidance(stationID, customerID, sku string) ScannerAvoidanceData {
	return ScannerAvoidanceData{Name: NameScannerAvoidance, StationID: stationID, CustomerID: customerID, ProductSKU: sku}
}

// BarcodeSwitchingData reports a scan that contradicts the vision system.
type BarcodeSwitchingData struct {
	Name       string `json:"event_name"`
	StationID  string `json:"station_id"`
	CustomerID string `json:"customer_id"`
	ActualSKU  string `json:"actual_sku"`
	ScannedSKU string `json:"scanned_sku"`
}

func (d BarcodeSwitchingData) EventName() string { return NameBarcodeSwitching }

func BarcodeSwitching(stationID, customerID, actualSKU, scannedSKU string) BarcodeSwitchingData {
	return BarcodeSwitchingData{Name: NameBarcodeSwitching, StationID: stationID, CustomerID: customerID, ActualSKU: actualSKU, ScannedSKU: scannedSKU}
}

// WeightDiscrepancyData reports a scanned weight outside catalog tolerance.
type WeightDiscrepancyData struct {
	Name           string  `json:"event_name"`
	StationID      string  `json:"station_id"`
	CustomerID     string  `json:"customer_id"`
	ProductSKU     string  `json:"product_sku"`
	ExpectedWeight float64 `json:"expected_weight"`
	ActualWeight   float64 `json:"actual_weight"`
}

func (d WeightDiscrepancyData) EventName() string { return NameWeightDiscrepancy }

func WeightDiscrepancy(stationID, customerID, sku string, expected, actual float64) WeightDiscrepancyData {
	return WeightDiscrepancyData{Name: NameWeightDiscrepancy, StationID: stationID, CustomerID: customerID, ProductSKU: sku, ExpectedWeight: expected, ActualWeight: actual}
}

// LongQueueData reports a queue above the customer-count threshold.
type LongQueueData struct {
	Name           string `json:"event_name"`
	StationID      string `json:"station_id"`
	NumOfCustomers int    `json:"num_of_customers"`
}

func (d LongQueueData) EventName() string { return NameLongQueue }

func LongQueue(stationID string, count int) LongQueueData {
	return LongQueueData{Name: NameLongQueue, StationID: stationID, NumOfCustomers: count}
}

// LongWaitData reports average dwell time above the threshold.
type LongWaitData struct {
	Name            string  `json:"event_name"`
	StationID       string  `json:"station_id"`
	WaitTimeSeconds float64 `json:"wait_time_seconds"`
}

func (d LongWaitData) EventName() string { return NameLongWait }

func LongWait(stationID string, seconds float64) LongWaitData {
	return LongWaitData{Name: NameLongWait, StationID: stationID, WaitTimeSeconds: seconds}
}

// InventoryDiscrepancyData reports a snapshot count diverging from the
// ledger. Field casing is part of the wire contract.
type InventoryDiscrepancyData struct {
	Name              string `json:"event_name"`
	SKU               string `json:"SKU"`
	ExpectedInventory int    `json:"Expected_Inventory"`
	ActualInventory   int    `json:"Actual_Inventory"`
}

func (d InventoryDiscrepancyData) EventName() string { return NameInventoryDiscrepancy }

func InventoryDiscrepancy(sku string, expected, actual int) InventoryDiscrepancyData {
	return InventoryDiscrepancyData{Name: NameInventoryDiscrepancy, SKU: sku, ExpectedInventory: expected, ActualInventory: actual}
}

// SystemCrashData reports a silent gap in a station's merged event stream.
type SystemCrashData struct {
	Name            string `json:"event_name"`
	StationID       string `json:"station_id"`
	DurationSeconds int    `json:"duration_seconds"`
}

func (d SystemCrashData) EventName() string { return NameSystemCrash }

func SystemCrash(stationID string, durationSeconds int) SystemCrashData {
	return SystemCrashData{Name: NameSystemCrash, StationID: stationID, DurationSeconds: durationSeconds}
}

// SuccessOperationData reports a scan corroborated by an RFID read.
type SuccessOperationData struct {
	Name       string `json:"event_name"`
	StationID  string `json:"station_id"`
	CustomerID string `json:"customer_id"`
	ProductSKU string `json:"product_sku"`
}

func (d SuccessOperationData) EventName() string { return NameSuccessOperation }

func SuccessOperation(stationID, customerID, sku string) SuccessOperationData {
	return SuccessOperationData{Name: NameSuccessOperation, StationID: stationID, CustomerID: customerID, ProductSKU: sku}
}
