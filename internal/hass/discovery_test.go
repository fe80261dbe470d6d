package hass

import (
	"encoding/json"
	"testing"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
)

func TestNewTopics(t *testing.T) {
	topics := NewTopics("homeassistant", "sunseeker-bridge", "MOWER01")

	if topics.Discovery != "homeassistant/device/MOWER01/config" {
		t.Errorf("Discovery = %q", topics.Discovery)
	}
	if topics.State != "sunseeker-bridge/MOWER01/state" {
		t.Errorf("State = %q", topics.State)
	}
	if topics.Command != "sunseeker-bridge/MOWER01/set" {
		t.Errorf("Command = %q", topics.Command)
	}
}

func TestNewDiscoveryMessage(t *testing.T) {
	topics := NewTopics("homeassistant", "sunseeker-bridge", "MOWER01")
	msg := NewDiscoveryMessage(Identity{
		DeviceID:        "MOWER01",
		Name:            "Backyard Mower",
		Model:           "S500",
		SoftwareVersion: "1.2.3",
	}, topics)

	if msg.Device.Manufacturer != "Sunseeker" || msg.Device.Model != "S500" {
		t.Errorf("device block = %+v", msg.Device)
	}
	if msg.AvailabilityTopic != topics.Availability {
		t.Errorf("availability topic = %q", msg.AvailabilityTopic)
	}

	// Every sensor plus the mower, button, switch and number entities.
	wantComponents := 4 + len(Sensors)
	if len(msg.Components) != wantComponents {
		t.Fatalf("got %d components, want %d", len(msg.Components), wantComponents)
	}

	lawnMower, ok := msg.Components["mower"]
	if !ok {
		t.Fatal("mower component missing")
	}
	if lawnMower.Platform != "lawn_mower" || lawnMower.ActivityStateTopic != topics.State {
		t.Errorf("lawn mower component = %+v", lawnMower)
	}
	if lawnMower.StartMowingCommandTopic != topics.Command || lawnMower.DockCommandTopic != topics.Command {
		t.Errorf("lawn mower command topics = %+v", lawnMower)
	}

	battery, ok := msg.Components["battery"]
	if !ok {
		t.Fatal("battery component missing")
	}
	if battery.ValueTemplate != "{{ value_json.power }}" || battery.UnitOfMeasurement != "%" {
		t.Errorf("battery component = %+v", battery)
	}

	edgeCut := msg.Components["edge_cut"]
	if edgeCut.Platform != "button" || edgeCut.PayloadPress != PayloadEdgeCut {
		t.Errorf("edge cut component = %+v", edgeCut)
	}

	rainDelay := msg.Components["rain_delay"]
	if rainDelay.Platform != "number" || rainDelay.CommandTopic != topics.RainDelayCommand {
		t.Errorf("rain delay component = %+v", rainDelay)
	}

	// The whole message must serialize cleanly.
	if _, err := json.Marshal(msg); err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
}

func TestStatePayloadAddsActivity(t *testing.T) {
	snapshot := mower.Snapshot{"mode": float64(1), "station": false, "power": float64(64)}
	payload := StatePayload(snapshot)

	if payload["activity"] != "mowing" {
		t.Errorf("activity = %v", payload["activity"])
	}
	if payload["power"] != float64(64) {
		t.Errorf("power = %v", payload["power"])
	}
	if _, ok := snapshot["activity"]; ok {
		t.Error("StatePayload mutated the source snapshot")
	}
}
