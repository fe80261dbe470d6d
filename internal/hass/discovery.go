// Package hass publishes the mower to Home Assistant over MQTT discovery
// and translates Home Assistant commands back into mower commands.
package hass

import (
	"fmt"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
)

const (
	manufacturer = "Sunseeker"
	originName   = "sunseeker-bridge"
	supportURL   = "https://github.com/itsbrianburton/sunseeker-bridge"
)

// Command payloads accepted on the mower command topic. The lawn_mower
// platform sends the first three by default.
const (
	PayloadStartMowing = "start_mowing"
	PayloadPause       = "pause"
	PayloadDock        = "dock"
	PayloadEdgeCut     = "edge_cut"
)

// DiscoveryMessage is a device-based MQTT discovery config: one retained
// message describing the device and every entity it exposes.
type DiscoveryMessage struct {
	Device            DeviceInfo           `json:"device"`
	Origin            OriginInfo           `json:"origin"`
	Components        map[string]Component `json:"components"`
	AvailabilityTopic string               `json:"availability_topic,omitempty"`
	StateTopic        string               `json:"state_topic,omitempty"`
	QOS               int                  `json:"qos"`
}

type DeviceInfo struct {
	Identifiers     string `json:"identifiers"`
	Name            string `json:"name"`
	Manufacturer    string `json:"manufacturer"`
	Model           string `json:"model,omitempty"`
	SoftwareVersion string `json:"sw_version,omitempty"`
	SerialNumber    string `json:"serial_number,omitempty"`
}

type OriginInfo struct {
	Name            string `json:"name"`
	SoftwareVersion string `json:"sw_version,omitempty"`
	SupportUrl      string `json:"support_url,omitempty"`
}

// Component is one entity in the discovery message. Fields beyond the
// common block apply only to some platforms and are omitted elsewhere.
type Component struct {
	Platform          string `json:"platform"`
	Name              string `json:"name,omitempty"`
	UniqueID          string `json:"unique_id,omitempty"`
	DeviceClass       string `json:"device_class,omitempty"`
	StateClass        string `json:"state_class,omitempty"`
	UnitOfMeasurement string `json:"unit_of_measurement,omitempty"`
	Icon              string `json:"icon,omitempty"`
	StateTopic        string `json:"state_topic,omitempty"`
	ValueTemplate     string `json:"value_template,omitempty"`
	CommandTopic      string `json:"command_topic,omitempty"`

	// lawn_mower
	ActivityStateTopic      string `json:"activity_state_topic,omitempty"`
	ActivityValueTemplate   string `json:"activity_value_template,omitempty"`
	StartMowingCommandTopic string `json:"start_mowing_command_topic,omitempty"`
	PauseCommandTopic       string `json:"pause_command_topic,omitempty"`
	DockCommandTopic        string `json:"dock_command_topic,omitempty"`

	// button
	PayloadPress string `json:"payload_press,omitempty"`

	// switch
	PayloadOn  string `json:"payload_on,omitempty"`
	PayloadOff string `json:"payload_off,omitempty"`

	// number
	Min  *float64 `json:"min,omitempty"`
	Max  *float64 `json:"max,omitempty"`
	Step *float64 `json:"step,omitempty"`
	Mode string   `json:"mode,omitempty"`
}

// Topics holds the bridge-owned topics one mower is exposed on.
type Topics struct {
	// Discovery is the retained device config topic under the Home
	// Assistant discovery prefix.
	Discovery string
	// State carries the merged status snapshot as JSON.
	State string
	// Availability carries "online"/"offline" and backs the LWT.
	Availability string
	// Command receives lawn mower activity payloads and the edge cut press.
	Command string
	// RainCommand receives ON/OFF for the rain sensor switch.
	RainCommand string
	// RainDelayCommand receives the rain delay in minutes.
	RainDelayCommand string
}

// NewTopics derives the bridge topic set for one device.
func NewTopics(discoveryPrefix, root, deviceID string) Topics {
	base := fmt.Sprintf("%s/%s", root, deviceID)
	return Topics{
		Discovery:        fmt.Sprintf("%s/device/%s/config", discoveryPrefix, deviceID),
		State:            base + "/state",
		Availability:     base + "/availability",
		Command:          base + "/set",
		RainCommand:      base + "/rain/set",
		RainDelayCommand: base + "/rain_delay/set",
	}
}

// Identity is the static device description shown in the Home Assistant
// device registry. Model and SoftwareVersion stay empty until the first
// robot status payload has been seen.
type Identity struct {
	DeviceID        string
	Name            string
	Model           string
	SoftwareVersion string
}

// NewDiscoveryMessage builds the full device discovery config for one
// mower: the lawn mower entity, the sensor set, the edge cut button and
// the rain delay controls.
func NewDiscoveryMessage(id Identity, topics Topics) DiscoveryMessage {
	components := map[string]Component{
		"mower": {
			Platform:                "lawn_mower",
			Name:                    id.Name,
			UniqueID:                id.DeviceID + "_mower",
			ActivityStateTopic:      topics.State,
			ActivityValueTemplate:   "{{ value_json.activity }}",
			StartMowingCommandTopic: topics.Command,
			PauseCommandTopic:       topics.Command,
			DockCommandTopic:        topics.Command,
		},
		"edge_cut": {
			Platform:     "button",
			Name:         "Edge cut",
			UniqueID:     id.DeviceID + "_edge_cut",
			Icon:         "mdi:scissors-cutting",
			CommandTopic: topics.Command,
			PayloadPress: PayloadEdgeCut,
		},
		"rain_sensor": {
			Platform:      "switch",
			Name:          "Rain sensor",
			UniqueID:      id.DeviceID + "_rain_sensor",
			Icon:          "mdi:weather-rainy",
			StateTopic:    topics.State,
			ValueTemplate: "{{ 'ON' if value_json.rain_en else 'OFF' }}",
			CommandTopic:  topics.RainCommand,
			PayloadOn:     "ON",
			PayloadOff:    "OFF",
		},
		"rain_delay": {
			Platform:          "number",
			Name:              "Rain delay",
			UniqueID:          id.DeviceID + "_rain_delay",
			Icon:              "mdi:timer-outline",
			UnitOfMeasurement: "min",
			StateTopic:        topics.State,
			ValueTemplate:     "{{ value_json.rain_delay_set }}",
			CommandTopic:      topics.RainDelayCommand,
			Min:               float64Ptr(0),
			Max:               float64Ptr(720),
			Step:              float64Ptr(1),
			Mode:              "box",
		},
	}

	for _, s := range Sensors {
		components[string(s.Kind)] = Component{
			Platform:          "sensor",
			Name:              s.Name,
			UniqueID:          fmt.Sprintf("%s_%s", id.DeviceID, s.Kind),
			DeviceClass:       s.DeviceClass,
			StateClass:        s.StateClass,
			UnitOfMeasurement: s.Unit,
			StateTopic:        topics.State,
			ValueTemplate:     fmt.Sprintf("{{ value_json.%s }}", s.Field),
		}
	}

	return DiscoveryMessage{
		Device: DeviceInfo{
			Identifiers:     id.DeviceID,
			Name:            id.Name,
			Manufacturer:    manufacturer,
			Model:           id.Model,
			SoftwareVersion: id.SoftwareVersion,
			SerialNumber:    id.DeviceID,
		},
		Origin: OriginInfo{
			Name:       originName,
			SupportUrl: supportURL,
		},
		Components:        components,
		AvailabilityTopic: topics.Availability,
		StateTopic:        topics.State,
		QOS:               1,
	}
}

func float64Ptr(v float64) *float64 { return &v }

// StatePayload is the document published on the state topic: the merged
// snapshot plus the derived activity label the lawn_mower entity reads.
func StatePayload(snapshot mower.Snapshot) map[string]any {
	payload := make(map[string]any, len(snapshot)+1)
	for k, v := range snapshot {
		payload[k] = v
	}
	payload["activity"] = snapshot.Activity()
	return payload
}
