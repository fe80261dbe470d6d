package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

var _ IOptions = (*MowerOptions)(nil)

// MowerOptions identifies the physical mower and tunes the status refresh
// cycle. DeviceID is the serial the mower was paired with and is mandatory.
type MowerOptions struct {
	DeviceID    string `json:"device-id" mapstructure:"device-id"`
	Name        string `json:"name" mapstructure:"name"`
	TopicPrefix string `json:"topic-prefix" mapstructure:"topic-prefix"`

	// RefreshInterval is the period of the scheduled status refresh.
	RefreshInterval time.Duration `json:"refresh-interval" mapstructure:"refresh-interval"`

	// CommandPause is the delay between the status request and the rain
	// status request within one refresh. The firmware drops back-to-back
	// commands, so the two requests must not be sent together.
	CommandPause time.Duration `json:"command-pause" mapstructure:"command-pause"`

	// RefreshTimeout bounds how long a refresh waits for a status payload.
	RefreshTimeout time.Duration `json:"refresh-timeout" mapstructure:"refresh-timeout"`
}

// NewMowerOptions creates MowerOptions with the protocol defaults.
func NewMowerOptions() *MowerOptions {
	return &MowerOptions{
		Name:            "Sunseeker Lawn Mower",
		TopicPrefix:     "device",
		RefreshInterval: 30 * time.Second,
		CommandPause:    500 * time.Millisecond,
		RefreshTimeout:  10 * time.Second,
	}
}

// Validate rejects configurations that would never reach a device.
func (o *MowerOptions) Validate() []error {
	errors := []error{}

	if strings.TrimSpace(o.DeviceID) == "" {
		errors = append(errors, fmt.Errorf("mower.device-id must not be empty"))
	}
	if o.TopicPrefix == "" {
		errors = append(errors, fmt.Errorf("mower.topic-prefix must not be empty"))
	}
	if o.RefreshInterval <= 0 {
		errors = append(errors, fmt.Errorf("mower.refresh-interval must be positive"))
	}
	if o.RefreshTimeout <= 0 {
		errors = append(errors, fmt.Errorf("mower.refresh-timeout must be positive"))
	}

	return errors
}

// AddFlags adds flags for MowerOptions to the specified FlagSet.
func (o *MowerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.DeviceID, "mower.device-id", o.DeviceID, "The device ID (serial) of the mower.")
	fs.StringVar(&o.Name, "mower.name", o.Name, "Display name for the mower.")
	fs.StringVar(&o.TopicPrefix, "mower.topic-prefix", o.TopicPrefix, "Topic prefix the mower firmware is configured with.")
	fs.DurationVar(&o.RefreshInterval, "mower.refresh-interval", o.RefreshInterval, "Period of the scheduled status refresh.")
	fs.DurationVar(&o.CommandPause, "mower.command-pause", o.CommandPause, "Pause between the status and rain status requests.")
	fs.DurationVar(&o.RefreshTimeout, "mower.refresh-timeout", o.RefreshTimeout, "How long a refresh waits for a status payload.")
}
