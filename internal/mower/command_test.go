package mower

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func decode(t *testing.T, cmd Command) map[string]any {
	t.Helper()
	payload, err := cmd.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(payload, &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	return m
}

func TestSetModeCommands(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want map[string]any
	}{
		{"start", Start(), map[string]any{"cmd": float64(101), "mode": float64(1)}},
		{"pause", Pause(), map[string]any{"cmd": float64(101), "mode": float64(0)}},
		{"dock", Dock(), map[string]any{"cmd": float64(101), "mode": float64(2)}},
		{"edge_cut", EdgeCut(), map[string]any{"cmd": float64(101), "mode": float64(4)}},
		{"status_request", StatusRequest(), map[string]any{"cmd": float64(200)}},
		{"rain_status_request", RainStatusRequest(), map[string]any{"cmd": float64(205)}},
		{"name_request", NameRequest(), map[string]any{"cmd": float64(202)}},
		{"schedule_request", ScheduleRequest(), map[string]any{"cmd": float64(203)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decode(t, tt.cmd); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetRainDelay(t *testing.T) {
	got := decode(t, SetRainDelay(true, 30))
	want := map[string]any{"cmd": float64(105), "rain_en": true, "rain_delay_set": float64(30)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCommandName(t *testing.T) {
	if got := Start().Name(); got != "set_mode" {
		t.Errorf("Name() = %q, want set_mode", got)
	}
	if got := (Command{"cmd": 999}).Name(); got != "999" {
		t.Errorf("Name() = %q, want 999", got)
	}
}

func TestSetScheduleEmitsAllDayKeys(t *testing.T) {
	cmd, err := SetSchedule(true, false, map[string]DaySchedule{
		"Mon": {Slices: []TimeSlice{{Start: 480, End: 720}}, Trimming: true},
	})
	if err != nil {
		t.Fatalf("SetSchedule() error = %v", err)
	}

	got := decode(t, cmd)
	if got["cmd"] != float64(103) || got["auto"] != true || got["pause"] != false {
		t.Fatalf("header fields wrong: %v", got)
	}

	for _, key := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		day, ok := got[key].(map[string]any)
		if !ok {
			t.Fatalf("day %s missing or wrong type: %v", key, got[key])
		}
		if key == "Mon" {
			continue
		}
		if len(day) != 0 {
			t.Errorf("day %s = %v, want empty object", key, day)
		}
	}

	mon := got["Mon"].(map[string]any)
	slices, ok := mon["slice"].([]any)
	if !ok || len(slices) != 1 {
		t.Fatalf("Mon slice = %v", mon["slice"])
	}
	slot := slices[0].(map[string]any)
	if slot["start"] != float64(480) || slot["end"] != float64(720) {
		t.Errorf("Mon slot = %v", slot)
	}
	if mon["trimming"] != true {
		t.Errorf("Mon trimming = %v, want true", mon["trimming"])
	}
}

func TestSetScheduleCoercion(t *testing.T) {
	tests := []struct {
		name    string
		start   any
		end     any
		wantErr bool
	}{
		{"ints", 480, 720, false},
		{"strings", "480", "720", false},
		{"whole floats", 480.0, 720.0, false},
		{"json numbers", json.Number("480"), json.Number("720"), false},
		{"fractional float", 480.5, 720, true},
		{"non numeric string", "8am", 720, true},
		{"nil value", nil, 720, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SetSchedule(false, false, map[string]DaySchedule{
				"Tue": {Slices: []TimeSlice{{Start: tt.start, End: tt.end}}},
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("SetSchedule() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSetScheduleFailsWholeCommand(t *testing.T) {
	_, err := SetSchedule(true, false, map[string]DaySchedule{
		"Mon": {Slices: []TimeSlice{{Start: 480, End: 720}}},
		"Fri": {Slices: []TimeSlice{{Start: "noon", End: 720}}},
	})
	if err == nil {
		t.Fatal("SetSchedule() expected error for malformed Fri slot")
	}
	if !strings.Contains(err.Error(), "Fri") {
		t.Errorf("error should name the bad day, got %v", err)
	}
}
