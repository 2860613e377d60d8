package cmd

import (
	"github.com/mcpjungle/mathtools/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of mathtools",
	Args:  cobra.NoArgs,
	// the version command never talks to a host
	PersistentPreRun: func(cmd *cobra.Command, args []string) {},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("mathtools %s\n", version.GetVersion())
	},
	Annotations: map[string]string{
		"group": string(subCommandGroupAdvanced),
		"order": "2",
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
