package options

import (
	"errors"

	"github.com/spf13/pflag"

	"github.com/itsbrianburton/sunseeker-bridge/internal/bridge"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/options"
)

// BridgeOptions aggregates every configurable surface of the bridge
// daemon. The mapstructure tags define the section names in the YAML
// config file.
type BridgeOptions struct {
	MqttOptions     *options.MqttOptions     `json:"mqtt" mapstructure:"mqtt"`
	HttpOptions     *options.HttpOptions     `json:"http" mapstructure:"http"`
	S3Options       *options.S3Options       `json:"s3" mapstructure:"s3"`
	MowerOptions    *options.MowerOptions    `json:"mower" mapstructure:"mower"`
	HassOptions     *options.HassOptions     `json:"hass" mapstructure:"hass"`
	ScheduleOptions *options.ScheduleOptions `json:"schedule" mapstructure:"schedule"`
	Log             *log.Options             `json:"log" mapstructure:"log"`
}

func NewBridgeOptions() *BridgeOptions {
	return &BridgeOptions{
		MqttOptions:     options.NewMqttOptions(),
		HttpOptions:     options.NewHttpOptions(),
		S3Options:       options.NewS3Options(),
		MowerOptions:    options.NewMowerOptions(),
		HassOptions:     options.NewHassOptions(),
		ScheduleOptions: options.NewScheduleOptions(),
		Log:             log.NewOptions(),
	}
}

// AddFlags registers every option group on the command's flag set.
func (o *BridgeOptions) AddFlags(fs *pflag.FlagSet) {
	o.MqttOptions.AddFlags(fs)
	o.HttpOptions.AddFlags(fs)
	o.S3Options.AddFlags(fs)
	o.MowerOptions.AddFlags(fs)
	o.HassOptions.AddFlags(fs)
	o.ScheduleOptions.AddFlags(fs)
	o.Log.AddFlags(fs)
}

// Complete fills in derived defaults.
func (o *BridgeOptions) Complete() error {
	if o.MqttOptions.ClientID == "" {
		o.MqttOptions.ClientID = "sunseeker-bridge-" + o.MowerOptions.DeviceID
	}
	return nil
}

// Validate collects the validation errors of every option group.
func (o *BridgeOptions) Validate() error {
	errs := []error{}
	errs = append(errs, o.MqttOptions.Validate()...)
	errs = append(errs, o.HttpOptions.Validate()...)
	errs = append(errs, o.S3Options.Validate()...)
	errs = append(errs, o.MowerOptions.Validate()...)
	errs = append(errs, o.HassOptions.Validate()...)
	errs = append(errs, o.ScheduleOptions.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	return errors.Join(errs...)
}

// Config builds the bridge configuration from the validated options.
func (o *BridgeOptions) Config() (*bridge.Config, error) {
	return &bridge.Config{
		MqttOptions:     o.MqttOptions,
		HttpOptions:     o.HttpOptions,
		S3Options:       o.S3Options,
		MowerOptions:    o.MowerOptions,
		HassOptions:     o.HassOptions,
		ScheduleOptions: o.ScheduleOptions,
	}, nil
}
