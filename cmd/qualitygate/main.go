// Command qualitygate is the developer-facing CLI: install the hook,
// diagnose the environment, and watch for file changes during local
// development. Grounded on the teacher's cmd/sdp/main.go cobra root
// command, stripped of SDP-specific telemetry hooks since none of the
// supplemented commands need a workflow-tracking side channel.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "qualitygate",
		Short:   "Post-write code quality gate for AI coding agents",
		Version: version,
		Long: `qualitygate runs formatter/linter and type-checker validation against
every file an AI agent writes, applies safe automatic fixes, and reports
back to the agent in a compact JSON shape.`,
	}

	rootCmd.AddCommand(installCmd())
	rootCmd.AddCommand(doctorCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
