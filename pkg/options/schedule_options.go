package options

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

var _ IOptions = (*ScheduleOptions)(nil)

// ScheduleOptions configures the mowing schedule file watcher. The watcher
// is optional and disabled when no file is given.
type ScheduleOptions struct {
	// File is the path to a YAML mowing schedule. When set the bridge
	// watches the file and pushes changes to the mower.
	File string `json:"file" mapstructure:"file"`
}

// NewScheduleOptions creates ScheduleOptions with the watcher disabled.
func NewScheduleOptions() *ScheduleOptions {
	return &ScheduleOptions{}
}

// Enabled reports whether a schedule file was configured.
func (o *ScheduleOptions) Enabled() bool {
	return o.File != ""
}

// Validate checks that the configured schedule file exists.
func (o *ScheduleOptions) Validate() []error {
	errors := []error{}

	if o.File == "" {
		return errors
	}
	if _, err := os.Stat(o.File); err != nil {
		errors = append(errors, fmt.Errorf("schedule.file: %w", err))
	}

	return errors
}

// AddFlags adds flags for ScheduleOptions to the specified FlagSet.
func (o *ScheduleOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.File, "schedule.file", o.File, "Path to a YAML mowing schedule to watch and push to the mower.")
}
