package hass

import (
	"testing"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
)

func TestSensorExtract(t *testing.T) {
	snapshot := mower.Snapshot{
		"power":     float64(77),
		"on_area":   float64(1250),
		"cur_area":  float64(40),
		"cur_min":   float64(25),
		"total_min": float64(3600),
		"wifi_lv":   float64(3),
	}

	want := map[SensorKind]float64{
		SensorBattery:        77,
		SensorAreaCovered:    1250,
		SensorCurrentArea:    40,
		SensorRuntimeCurrent: 25,
		SensorRuntimeTotal:   3600,
		SensorWifiSignal:     3,
	}

	for _, s := range Sensors {
		t.Run(string(s.Kind), func(t *testing.T) {
			v, ok := s.Extract(snapshot)
			if !ok {
				t.Fatalf("Extract() reported missing field %q", s.Field)
			}
			if v != want[s.Kind] {
				t.Errorf("Extract() = %v, want %v", v, want[s.Kind])
			}
		})
	}
}

func TestSensorExtractMissingField(t *testing.T) {
	for _, s := range Sensors {
		if _, ok := s.Extract(mower.Snapshot{}); ok {
			t.Errorf("sensor %s reported a value from an empty snapshot", s.Kind)
		}
	}
}
