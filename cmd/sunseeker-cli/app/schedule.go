package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itsbrianburton/sunseeker-bridge/internal/schedule"
)

func newScheduleCommand(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage the mowing schedule",
	}
	cmd.AddCommand(newSchedulePushCommand(opts))
	return cmd
}

func newSchedulePushCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push <file>",
		Short: "Push a YAML schedule file to the mower",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := schedule.Load(args[0])
			if err != nil {
				return err
			}
			// Validate before connecting so a bad file fails fast.
			command, err := file.Command()
			if err != nil {
				return err
			}

			coord, cleanup, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			if err := coord.SendCommand(cmd.Context(), command); err != nil {
				return err
			}
			fmt.Printf("Schedule from %s pushed to %s\n", args[0], coord.DeviceID())
			return nil
		},
	}
}
