package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the build version, set via ldflags on release builds.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the envault version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("envault %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	},
}
