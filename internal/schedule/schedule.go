// Package schedule loads mowing schedules from a YAML file and pushes them
// to the mower whenever the file changes.
package schedule

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/itsbrianburton/sunseeker-bridge/internal/mower"
)

// File is the on-disk schedule document.
//
//	auto: true
//	pause: false
//	days:
//	  Mon:
//	    trimming: true
//	    slice:
//	      - start: 480
//	        end: 720
type File struct {
	Auto  bool                         `mapstructure:"auto"`
	Pause bool                         `mapstructure:"pause"`
	Days  map[string]mower.DaySchedule `mapstructure:"days"`
}

// Load reads and decodes a schedule file.
func Load(path string) (*File, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read schedule file: %w", err)
	}

	var f File
	if err := v.Unmarshal(&f); err != nil {
		return nil, fmt.Errorf("decode schedule file: %w", err)
	}
	return &f, nil
}

// Command converts the file into the mower's schedule command. It fails
// when any slot has a non-integer start or end.
func (f *File) Command() (mower.Command, error) {
	return mower.SetSchedule(f.Auto, f.Pause, f.Days)
}
