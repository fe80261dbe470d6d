package mower

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Command is one outbound message for the mower's command topic. The
// firmware keys every command off the integer "cmd" field.
type Command map[string]any

// Encode serializes the command to the JSON text payload the firmware
// expects.
func (c Command) Encode() ([]byte, error) {
	return json.Marshal(c)
}

// Name returns a short label for the command, used in logs and metrics.
func (c Command) Name() string {
	code, ok := c["cmd"].(int)
	if !ok {
		return "unknown"
	}
	switch code {
	case cmdSetMode:
		return "set_mode"
	case cmdSetSchedule:
		return "set_schedule"
	case cmdSetRainDelay:
		return "set_rain_delay"
	case cmdStatusRequest:
		return "status_request"
	case cmdNameRequest:
		return "name_request"
	case cmdScheduleRequest:
		return "schedule_request"
	case cmdRainStatusRequest:
		return "rain_status_request"
	default:
		return strconv.Itoa(code)
	}
}

// Start commands the mower to begin mowing.
func Start() Command { return Command{"cmd": cmdSetMode, "mode": ModeStart} }

// Pause commands the mower to pause in place.
func Pause() Command { return Command{"cmd": cmdSetMode, "mode": ModePause} }

// Dock commands the mower to return to its charging station.
func Dock() Command { return Command{"cmd": cmdSetMode, "mode": ModeDock} }

// EdgeCut commands the mower to cut along the perimeter wire.
func EdgeCut() Command { return Command{"cmd": cmdSetMode, "mode": ModeEdgeCut} }

// StatusRequest asks the mower to publish a robot status payload.
func StatusRequest() Command { return Command{"cmd": cmdStatusRequest} }

// RainStatusRequest asks the mower to publish a rain status payload.
func RainStatusRequest() Command { return Command{"cmd": cmdRainStatusRequest} }

// NameRequest asks the mower to publish its configured name.
func NameRequest() Command { return Command{"cmd": cmdNameRequest} }

// ScheduleRequest asks the mower to publish its stored mowing schedule.
func ScheduleRequest() Command { return Command{"cmd": cmdScheduleRequest} }

// SetRainDelay enables or disables the rain sensor and sets the delay in
// minutes the mower waits after rain before resuming.
func SetRainDelay(enabled bool, delayMinutes int) Command {
	return Command{"cmd": cmdSetRainDelay, "rain_en": enabled, "rain_delay_set": delayMinutes}
}

// TimeSlice is one start/end window within a day's schedule. Start and End
// are minutes since midnight. They accept loosely typed values (schedule
// files and service calls deliver strings or floats) and are coerced to
// integers at encode time.
type TimeSlice struct {
	Start any `json:"start" mapstructure:"start"`
	End   any `json:"end" mapstructure:"end"`
}

// DaySchedule is the mowing plan for a single day.
type DaySchedule struct {
	Slices   []TimeSlice `json:"slice" mapstructure:"slice"`
	Trimming bool        `json:"trimming" mapstructure:"trimming"`
}

// SetSchedule builds the schedule command. All seven day keys are always
// present; a day missing from days becomes an empty object, which the
// firmware reads as "no mowing". Any slot whose start or end cannot be
// coerced to an integer fails the whole command so a half-valid schedule
// is never sent.
func SetSchedule(auto, pause bool, days map[string]DaySchedule) (Command, error) {
	cmd := Command{"cmd": cmdSetSchedule, "auto": auto, "pause": pause}

	for _, key := range dayKeys {
		day, ok := days[key]
		if !ok {
			cmd[key] = map[string]any{}
			continue
		}

		slices := make([]map[string]int, 0, len(day.Slices))
		for i, s := range day.Slices {
			start, err := coerceMinutes(s.Start)
			if err != nil {
				return nil, fmt.Errorf("schedule %s slot %d start: %w", key, i, err)
			}
			end, err := coerceMinutes(s.End)
			if err != nil {
				return nil, fmt.Errorf("schedule %s slot %d end: %w", key, i, err)
			}
			slices = append(slices, map[string]int{"start": start, "end": end})
		}
		cmd[key] = map[string]any{"slice": slices, "trimming": day.Trimming}
	}

	return cmd, nil
}

// coerceMinutes converts the loosely typed values found in schedule input
// into the integer minute counts the firmware requires.
func coerceMinutes(v any) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("value %v is not a whole number", t)
		}
		return int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", t.String())
		}
		return int(n), nil
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", t)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}
