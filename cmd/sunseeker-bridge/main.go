package main

import (
	"fmt"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/itsbrianburton/sunseeker-bridge/cmd/sunseeker-bridge/app"
)

func main() {
	cmd := app.NewBridgeCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
