// Package app wires the bridge daemon's command line interface.
package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/itsbrianburton/sunseeker-bridge/cmd/sunseeker-bridge/app/options"
	"github.com/itsbrianburton/sunseeker-bridge/pkg/log"
)

const commandDesc = `The Sunseeker bridge connects a Sunseeker robotic lawn mower to
Home Assistant over MQTT. It speaks the mower's native command and status
protocol on one side and publishes MQTT discovery, state and availability
topics on the other, plus a small REST API, health probes and Prometheus
metrics over HTTP.

Optional extras: a watched YAML schedule file that is pushed to the mower
on change, and periodic status snapshots archived to S3-compatible
object storage.`

// NewBridgeCommand builds the root command of the bridge daemon.
func NewBridgeCommand() *cobra.Command {
	opts := options.NewBridgeOptions()
	var configFile string

	cmd := &cobra.Command{
		Use:           "sunseeker-bridge",
		Short:         "Bridge a Sunseeker mower to Home Assistant over MQTT",
		Long:          commandDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfigFile(configFile, cmd.Flags(), opts); err != nil {
				return err
			}
			if err := opts.Complete(); err != nil {
				return err
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			return run(opts)
		},
	}

	opts.AddFlags(cmd.Flags())
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to a YAML configuration file.")

	return cmd
}

// loadConfigFile merges a YAML config file into the options. Flags set
// explicitly on the command line keep precedence over file values.
func loadConfigFile(path string, fs *pflag.FlagSet, opts *options.BridgeOptions) error {
	if path == "" {
		return nil
	}

	explicit := map[string]string{}
	fs.Visit(func(f *pflag.Flag) {
		explicit[f.Name] = f.Value.String()
	})

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(opts); err != nil {
		return fmt.Errorf("failed to decode config file: %w", err)
	}

	for name, value := range explicit {
		if err := fs.Set(name, value); err != nil {
			return fmt.Errorf("failed to re-apply flag --%s: %w", name, err)
		}
	}
	return nil
}

func run(opts *options.BridgeOptions) error {
	log.Init(opts.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := opts.Config()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	b, err := cfg.New()
	if err != nil {
		return fmt.Errorf("failed to create bridge: %w", err)
	}

	return b.Run(ctx)
}
