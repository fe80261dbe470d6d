package mower

import (
	"errors"
	"testing"

	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
)

func TestSnapshotNoData(t *testing.T) {
	cache := NewStatusCache(log.NewNopLogger())
	if _, err := cache.Snapshot(); !errors.Is(err, ErrNoData) {
		t.Errorf("Snapshot() error = %v, want ErrNoData", err)
	}
}

func TestIngestMergesRobotAndRain(t *testing.T) {
	cache := NewStatusCache(log.NewNopLogger())

	kind, changed := cache.Ingest([]byte(`{"cmd":501,"mode":1,"station":false,"power":77}`))
	if kind != KindRobot || !changed {
		t.Fatalf("Ingest(robot) = (%q, %v), want (robot, true)", kind, changed)
	}

	snapshot, err := cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snapshot.Mode() != 1 || snapshot.Docked() || snapshot.Battery() != 77 {
		t.Errorf("snapshot = %v", snapshot)
	}

	kind, changed = cache.Ingest([]byte(`{"cmd":505,"rain_en":true,"rain_status":0}`))
	if kind != KindRain || !changed {
		t.Fatalf("Ingest(rain) = (%q, %v), want (rain, true)", kind, changed)
	}

	snapshot, err = cache.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	// Robot fields survive the rain update and vice versa.
	if snapshot.Mode() != 1 || snapshot.Battery() != 77 {
		t.Errorf("robot fields lost after rain ingest: %v", snapshot)
	}
	if snapshot["rain_en"] != true || snapshot["rain_status"] != float64(0) {
		t.Errorf("rain fields missing: %v", snapshot)
	}

	// A fresh robot payload replaces the robot half only.
	cache.Ingest([]byte(`{"cmd":501,"mode":2,"station":true,"power":80}`))
	snapshot, _ = cache.Snapshot()
	if snapshot.Mode() != 2 || !snapshot.Docked() || snapshot.Battery() != 80 {
		t.Errorf("robot half not replaced: %v", snapshot)
	}
	if snapshot["rain_en"] != true {
		t.Errorf("rain half touched by robot update: %v", snapshot)
	}
}

func TestIngestMalformed(t *testing.T) {
	cache := NewStatusCache(log.NewNopLogger())
	cache.Ingest([]byte(`{"cmd":501,"power":50}`))

	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `this is not json`},
		{"missing cmd", `{"power":10}`},
		{"non numeric cmd", `{"cmd":"status"}`},
		{"unknown cmd", `{"cmd":999,"power":10}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, changed := cache.Ingest([]byte(tt.payload))
			if kind != KindDropped || changed {
				t.Errorf("Ingest() = (%q, %v), want (dropped, false)", kind, changed)
			}
			snapshot, err := cache.Snapshot()
			if err != nil {
				t.Fatalf("Snapshot() error = %v", err)
			}
			if snapshot.Battery() != 50 {
				t.Errorf("snapshot changed by malformed payload: %v", snapshot)
			}
		})
	}
}

func TestIdentityDerivedOnce(t *testing.T) {
	cache := NewStatusCache(log.NewNopLogger())

	if _, _, ok := cache.Identity(); ok {
		t.Fatal("Identity() ok before any ingest")
	}

	cache.Ingest([]byte(`{"cmd":501,"model":"S500","version":"1.2.3"}`))
	model, version, ok := cache.Identity()
	if !ok || model != "S500" || version != "1.2.3" {
		t.Fatalf("Identity() = (%q, %q, %v)", model, version, ok)
	}

	// Later payloads do not overwrite the derived identity.
	cache.Ingest([]byte(`{"cmd":501,"model":"S900","version":"9.9.9"}`))
	model, version, _ = cache.Identity()
	if model != "S500" || version != "1.2.3" {
		t.Errorf("identity re-derived: (%q, %q)", model, version)
	}
}

func TestNameResponse(t *testing.T) {
	cache := NewStatusCache(log.NewNopLogger())

	kind, changed := cache.Ingest([]byte(`{"cmd":502,"name":"Backyard Mower"}`))
	if kind != KindName || changed {
		t.Fatalf("Ingest(name) = (%q, %v), want (name, false)", kind, changed)
	}
	if got := cache.Name(); got != "Backyard Mower" {
		t.Errorf("Name() = %q", got)
	}
}

func TestSnapshotActivity(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{"mowing", Snapshot{"mode": float64(1), "station": false}, "mowing"},
		{"edge cut counts as mowing", Snapshot{"mode": float64(4), "station": false}, "mowing"},
		{"paused", Snapshot{"mode": float64(0), "station": false}, "paused"},
		{"returning", Snapshot{"mode": float64(2), "station": false}, "returning"},
		{"station overrides mode", Snapshot{"mode": float64(1), "station": true}, "docked"},
		{"empty snapshot", Snapshot{}, "paused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Activity(); got != tt.want {
				t.Errorf("Activity() = %q, want %q", got, tt.want)
			}
		})
	}
}
