package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	outputTable = "table"
	outputJSON  = "json"
	outputYAML  = "yaml"
)

var toolsCmdOutput string

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the tools of a running Tool Host",
	Args:  cobra.NoArgs,
	RunE:  runListTools,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "2",
	},
}

func init() {
	toolsCmd.Flags().StringVarP(
		&toolsCmdOutput,
		"output",
		"o",
		outputTable,
		fmt.Sprintf("output format: %s, %s or %s", outputTable, outputJSON, outputYAML),
	)

	rootCmd.AddCommand(toolsCmd)
}

func runListTools(cmd *cobra.Command, args []string) error {
	tools, err := apiClient.ListTools()
	if err != nil {
		return fmt.Errorf("failed to list tools: %w", err)
	}

	switch strings.ToLower(toolsCmdOutput) {
	case outputJSON:
		j, err := json.MarshalIndent(tools, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode tools: %w", err)
		}
		cmd.Println(string(j))
	case outputYAML:
		y, err := yaml.Marshal(tools)
		if err != nil {
			return fmt.Errorf("failed to encode tools: %w", err)
		}
		cmd.Print(string(y))
	case outputTable:
		if len(tools) == 0 {
			cmd.Println("There are no tools registered")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPARAMS\tDESCRIPTION")
		for _, t := range tools {
			params := make([]string, len(t.Params))
			for i, p := range t.Params {
				params[i] = fmt.Sprintf("%s:%s", p.Name, p.Type)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, strings.Join(params, ","), t.Description)
		}
		return w.Flush()
	default:
		return fmt.Errorf(
			"invalid output format '%s', valid values are '%s', '%s' and '%s'",
			toolsCmdOutput, outputTable, outputJSON, outputYAML,
		)
	}
	return nil
}
