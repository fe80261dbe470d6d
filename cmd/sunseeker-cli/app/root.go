// Package app implements the sunseeker-cli operator tool: one-shot
// commands against a mower over the broker, without running the bridge.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
	pkgmqtt "github.com/itsbrianburton/sunseeker-bridge/pkg/mqtt"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/options"
)

type cliOptions struct {
	Mqtt  *options.MqttOptions
	Mower *options.MowerOptions
	Log   *log.Options
}

func newCliOptions() *cliOptions {
	o := &cliOptions{
		Mqtt:  options.NewMqttOptions(),
		Mower: options.NewMowerOptions(),
		Log:   log.NewOptions(),
	}
	// A CLI should be quiet unless something goes wrong.
	o.Log.Level = "warn"
	o.Log.DisableCaller = true
	return o
}

// NewRootCommand builds the sunseeker-cli command tree.
func NewRootCommand() *cobra.Command {
	opts := newCliOptions()

	root := &cobra.Command{
		Use:          "sunseeker-cli",
		Short:        "Operate a Sunseeker mower from the command line",
		SilenceUsage: true,
	}

	fs := root.PersistentFlags()
	opts.Mqtt.AddFlags(fs)
	opts.Mower.AddFlags(fs)
	opts.Log.AddFlags(fs)

	root.AddCommand(
		newStatusCommand(opts),
		newModeCommand(opts, "start", "Start mowing", mower.Start),
		newModeCommand(opts, "pause", "Pause the mower in place", mower.Pause),
		newModeCommand(opts, "dock", "Send the mower back to its charging station", mower.Dock),
		newModeCommand(opts, "edge-cut", "Cut along the perimeter wire", mower.EdgeCut),
		newRainDelayCommand(opts),
		newScheduleCommand(opts),
	)

	return root
}

func (o *cliOptions) validate() error {
	errs := []error{}
	errs = append(errs, o.Mqtt.Validate()...)
	errs = append(errs, o.Mower.Validate()...)
	return errors.Join(errs...)
}

// connect builds the transport and coordinator for one command
// invocation. The returned cleanup tears both down.
func (o *cliOptions) connect(ctx context.Context) (*mower.Coordinator, func(), error) {
	log.Init(o.Log)

	if err := o.validate(); err != nil {
		return nil, nil, err
	}
	if o.Mqtt.ClientID == "" {
		o.Mqtt.ClientID = fmt.Sprintf("sunseeker-cli-%d", os.Getpid())
	}

	client, err := pkgmqtt.NewClient(o.Mqtt.ToClientConfig())
	if err != nil {
		return nil, nil, err
	}
	if err := client.Start(ctx); err != nil {
		return nil, nil, err
	}

	waitCtx, cancel := context.WithTimeout(ctx, o.Mqtt.ConnectTimeout)
	defer cancel()
	if err := client.AwaitConnection(waitCtx); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("broker %s not reachable: %w", o.Mqtt.Broker, err)
	}

	coord, err := mower.NewCoordinator(mower.Config{
		DeviceID:       o.Mower.DeviceID,
		TopicPrefix:    o.Mower.TopicPrefix,
		CommandPause:   o.Mower.CommandPause,
		RefreshTimeout: o.Mower.RefreshTimeout,
	}, client, log.Std())
	if err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}
	if err := coord.Start(ctx); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, err
	}

	cleanup := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		coord.Stop(stopCtx)
		client.Disconnect(stopCtx)
	}
	return coord, cleanup, nil
}

// newModeCommand builds one of the fire-and-forget mode subcommands.
func newModeCommand(opts *cliOptions, use, short string, build func() mower.Command) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, cleanup, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := coord.SendCommand(cmd.Context(), build()); err != nil {
				return err
			}
			fmt.Printf("Command %q sent to %s\n", use, coord.DeviceID())
			return nil
		},
	}
}

func newRainDelayCommand(opts *cliOptions) *cobra.Command {
	var disable bool

	cmd := &cobra.Command{
		Use:   "rain-delay <minutes>",
		Short: "Set the rain delay in minutes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var minutes int
			if _, err := fmt.Sscanf(args[0], "%d", &minutes); err != nil || minutes < 0 {
				return fmt.Errorf("minutes must be a non-negative integer, got %q", args[0])
			}

			coord, cleanup, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := coord.SendCommand(cmd.Context(), mower.SetRainDelay(!disable, minutes)); err != nil {
				return err
			}
			fmt.Printf("Rain delay set to %d min (sensor %s) on %s\n",
				minutes, enabledWord(!disable), coord.DeviceID())
			return nil
		},
	}

	cmd.Flags().BoolVar(&disable, "disable", false, "Disable the rain sensor instead of enabling it.")
	return cmd
}

func enabledWord(enabled bool) string {
	if enabled {
		return "enabled"
	}
	return "disabled"
}
