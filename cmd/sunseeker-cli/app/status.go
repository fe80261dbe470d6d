package app

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/itsbrianburton/sunseeker-bridge/internal/hass"
)

func newStatusCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Request and display the current mower status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, cleanup, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			snapshot, err := coord.Refresh(cmd.Context())
			if err != nil {
				return err
			}

			table := uitable.New()
			table.MaxColWidth = 50

			table.AddRow("FIELD", "VALUE")
			table.AddRow("Device", coord.DeviceID())
			if model, version, ok := coord.Cache().Identity(); ok {
				table.AddRow("Model", model)
				table.AddRow("Firmware", version)
			}
			table.AddRow("Activity", snapshot.Activity())
			table.AddRow("Docked", fmt.Sprintf("%t", snapshot.Docked()))

			for _, sensor := range hass.Sensors {
				value, ok := sensor.Extract(snapshot)
				if !ok {
					continue
				}
				if sensor.Unit != "" {
					table.AddRow(sensor.Name, fmt.Sprintf("%v %s", value, sensor.Unit))
				} else {
					table.AddRow(sensor.Name, fmt.Sprintf("%v", value))
				}
			}
			if enabled, ok := snapshot["rain_en"].(bool); ok {
				table.AddRow("Rain sensor", enabledWord(enabled))
			}
			if delay, ok := snapshot["rain_delay_set"].(float64); ok {
				table.AddRow("Rain delay", fmt.Sprintf("%d min", int(delay)))
			}

			fmt.Println(table)
			return nil
		},
	}
}
