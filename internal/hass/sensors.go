package hass

import "github.com/itsbrianburton/sunseeker-bridge/internal/mower"

// SensorKind enumerates the readable values derived from the status
// snapshot. The set is fixed; adding a kind means adding a Sensor entry.
type SensorKind string

const (
	SensorBattery        SensorKind = "battery"
	SensorAreaCovered    SensorKind = "area_covered"
	SensorCurrentArea    SensorKind = "current_area"
	SensorRuntimeCurrent SensorKind = "runtime_current"
	SensorRuntimeTotal   SensorKind = "runtime_total"
	SensorWifiSignal     SensorKind = "wifi_signal"
)

// Sensor describes one derivable status field: its identity for Home
// Assistant plus the snapshot field it is extracted from.
type Sensor struct {
	Kind        SensorKind
	Name        string
	Field       string
	Unit        string
	DeviceClass string
	StateClass  string
}

// Extract reads the sensor's value from a snapshot. ok is false when the
// field has not been reported yet.
func (s Sensor) Extract(snapshot mower.Snapshot) (any, bool) {
	v, ok := snapshot[s.Field]
	return v, ok
}

// Sensors is the full sensor set published for every mower.
var Sensors = []Sensor{
	{Kind: SensorBattery, Name: "Battery", Field: "power", Unit: "%", DeviceClass: "battery", StateClass: "measurement"},
	{Kind: SensorAreaCovered, Name: "Area covered", Field: "on_area", Unit: "m²", StateClass: "total_increasing"},
	{Kind: SensorCurrentArea, Name: "Current session area", Field: "cur_area", Unit: "m²", StateClass: "measurement"},
	{Kind: SensorRuntimeCurrent, Name: "Current session runtime", Field: "cur_min", Unit: "min", DeviceClass: "duration", StateClass: "measurement"},
	{Kind: SensorRuntimeTotal, Name: "Total runtime", Field: "total_min", Unit: "min", DeviceClass: "duration", StateClass: "total_increasing"},
	{Kind: SensorWifiSignal, Name: "Wi-Fi signal", Field: "wifi_lv", StateClass: "measurement"},
}
