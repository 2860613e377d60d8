package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var usageCmd = &cobra.Command{
	Use:   "usage <name>",
	Short: "Get usage information for a tool",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetToolUsage,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "3",
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runGetToolUsage(cmd *cobra.Command, args []string) error {
	t, err := apiClient.GetTool(args[0])
	if err != nil {
		return fmt.Errorf("failed to get tool '%s': %w", args[0], err)
	}

	cmd.Println(formatSignature(*t))

	if len(t.Params) == 0 {
		cmd.Println("This tool does not require any input parameters.")
		return nil
	}

	cmd.Println()
	cmd.Println("Input Parameters (in positional order):")
	for i, p := range t.Params {
		header := fmt.Sprintf("%d. %s (%s, required)", i+1, p.Name, p.Type)
		boundary := strings.Repeat("=", len(header)+4)

		cmd.Println(boundary)
		cmd.Println(header)
		if p.Description != "" {
			cmd.Println(p.Description)
		}
		cmd.Println(boundary)
		cmd.Println()
	}

	if t.OutputType != "" {
		cmd.Printf("Returns: %s\n", t.OutputType)
	}
	return nil
}
