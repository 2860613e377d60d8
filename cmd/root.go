// Package cmd implements the mathtools command line interface.
package cmd

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mcpjungle/mathtools/client"
	"github.com/mcpjungle/mathtools/internal/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// subCommandGroup is used to arrange the subcommands in the help output
type subCommandGroup string

const (
	subCommandGroupBasic    subCommandGroup = "Basic Commands"
	subCommandGroupAdvanced subCommandGroup = "Advanced Commands"
)

const apiRequestTimeout = 30 * time.Second

var (
	// configFilePath is the optional YAML config file given with --config
	configFilePath string

	// hostURL overrides the URL of the Tool Host used by the REST commands
	hostURL string

	// appFs is the filesystem config files are read from
	appFs = afero.NewOsFs()

	apiClient *client.Client
)

var rootCmd = &cobra.Command{
	Use:   "mathtools",
	Short: "Discover and invoke tools on a local Tool Host",
	Long: "mathtools runs a Tool Host that exposes a catalog of tools over MCP and a REST API,\n" +
		"and a Tool Client that finds or starts a host, discovers its tools and invokes them interactively.\n\n" +
		"Quick start:\n" +
		"    mathtools run client\n\n" +
		"The client starts a host in the background if none is running.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// a .env file in the working directory is optional
		_ = godotenv.Load()

		u := hostURL
		if u == "" {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			u = c.BaseURL()
		}
		apiClient = client.NewClient(u, "", &http.Client{Timeout: apiRequestTimeout})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&configFilePath,
		"config",
		"",
		fmt.Sprintf("path to a YAML config file (default %s if present)", config.DefaultConfigFile),
	)
	rootCmd.PersistentFlags().StringVar(
		&hostURL,
		"host-url",
		"",
		"URL of the Tool Host (default is derived from the bind address and port)",
	)

	rootCmd.SetUsageFunc(usageFunc)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the configuration from the config file and the environment.
func loadConfig() (*config.Config, error) {
	c, err := config.Load(appFs, configFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return c, nil
}

// usageFunc prints the usage of a command. The root command lists its subcommands
// grouped and ordered by their "group" and "order" annotations.
func usageFunc(cmd *cobra.Command) error {
	out := cmd.OutOrStderr()

	if cmd.Runnable() {
		fmt.Fprintf(out, "Usage:\n  %s\n", cmd.UseLine())
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(out, "Usage:\n  %s [command]\n", cmd.CommandPath())
		if cmd == rootCmd {
			printGroupedCommands(cmd)
		} else {
			fmt.Fprintf(out, "\nAvailable Commands:\n")
			for _, c := range cmd.Commands() {
				if c.IsAvailableCommand() {
					fmt.Fprintf(out, "  %-12s %s\n", c.Name(), c.Short)
				}
			}
		}
	}

	if cmd.HasAvailableLocalFlags() {
		fmt.Fprintf(out, "\nFlags:\n%s", cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		fmt.Fprintf(out, "\nGlobal Flags:\n%s", cmd.InheritedFlags().FlagUsages())
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(out, "\nUse \"%s [command] --help\" for more information about a command.\n", cmd.CommandPath())
	}
	return nil
}

func printGroupedCommands(cmd *cobra.Command) {
	out := cmd.OutOrStderr()

	groups := map[subCommandGroup][]*cobra.Command{}
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() {
			continue
		}
		g := subCommandGroup(c.Annotations["group"])
		if g == "" {
			g = subCommandGroupAdvanced
		}
		groups[g] = append(groups[g], c)
	}

	for _, g := range []subCommandGroup{subCommandGroupBasic, subCommandGroupAdvanced} {
		cmds := groups[g]
		if len(cmds) == 0 {
			continue
		}
		sort.SliceStable(cmds, func(i, j int) bool {
			return commandOrder(cmds[i]) < commandOrder(cmds[j])
		})

		fmt.Fprintf(out, "\n%s:\n", g)
		for _, c := range cmds {
			fmt.Fprintf(out, "  %-12s %s\n", c.Name(), c.Short)
		}
	}
}

func commandOrder(c *cobra.Command) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Annotations["order"]))
	if err != nil {
		return 1 << 30
	}
	return n
}
