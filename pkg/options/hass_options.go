package options

import (
	"fmt"

	"github.com/spf13/pflag"
)

var _ IOptions = (*HassOptions)(nil)

// HassOptions configures the Home Assistant MQTT discovery surface.
type HassOptions struct {
	// Enabled controls whether discovery and state topics are published.
	Enabled bool `json:"enabled" mapstructure:"enabled"`

	// DiscoveryPrefix is the discovery topic root Home Assistant listens
	// on, almost always "homeassistant".
	DiscoveryPrefix string `json:"discovery-prefix" mapstructure:"discovery-prefix"`

	// TopicRoot is the root of the bridge's own state and command topics.
	TopicRoot string `json:"topic-root" mapstructure:"topic-root"`
}

// NewHassOptions creates HassOptions with Home Assistant's defaults.
func NewHassOptions() *HassOptions {
	return &HassOptions{
		Enabled:         true,
		DiscoveryPrefix: "homeassistant",
		TopicRoot:       "sunseeker-bridge",
	}
}

// Validate checks HassOptions.
func (o *HassOptions) Validate() []error {
	errors := []error{}

	if !o.Enabled {
		return errors
	}
	if o.DiscoveryPrefix == "" {
		errors = append(errors, fmt.Errorf("hass.discovery-prefix must not be empty"))
	}
	if o.TopicRoot == "" {
		errors = append(errors, fmt.Errorf("hass.topic-root must not be empty"))
	}

	return errors
}

// AddFlags adds flags for HassOptions to the specified FlagSet.
func (o *HassOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.BoolVar(&o.Enabled, "hass.enabled", o.Enabled, "Publish Home Assistant MQTT discovery and state topics.")
	fs.StringVar(&o.DiscoveryPrefix, "hass.discovery-prefix", o.DiscoveryPrefix, "Home Assistant discovery topic prefix.")
	fs.StringVar(&o.TopicRoot, "hass.topic-root", o.TopicRoot, "Root of the bridge's state and command topics.")
}
