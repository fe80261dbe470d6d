package topic

import (
	"fmt"
)

// Segments of the Sunseeker device protocol. These act as the wire contract
// between the bridge and the mower firmware; changing them breaks
// compatibility with deployed devices.
const (
	// SuffixCommand is the outbound command topic segment (bridge -> mower).
	// Structure: /{prefix}/{deviceID}/get
	SuffixCommand = "get"

	// SuffixResponse is the inbound status topic segment (mower -> bridge).
	// Structure: /{prefix}/{deviceID}/update
	SuffixResponse = "update"
)

// Builder encapsulates the logic for constructing the mower's MQTT topic
// strings. The firmware expects a leading slash on every topic.
type Builder struct {
	// prefix is the base namespace shared by all devices (e.g. "device").
	prefix string
}

// NewBuilder creates a new Builder with the specified topic prefix.
func NewBuilder(prefix string) *Builder {
	return &Builder{prefix: prefix}
}

// Command returns the topic the mower listens on for JSON commands.
// Direction: bridge -> mower.
func (b *Builder) Command(deviceID string) string {
	return b.build(deviceID, SuffixCommand)
}

// Response returns the topic the mower publishes status payloads on.
// Direction: mower -> bridge.
func (b *Builder) Response(deviceID string) string {
	return b.build(deviceID, SuffixResponse)
}

// build is a private helper to construct the final topic string.
// Pattern: /{prefix}/{deviceID}/{suffix}
func (b *Builder) build(deviceID, suffix string) string {
	return fmt.Sprintf("/%s/%s/%s", b.prefix, deviceID, suffix)
}
