package cmd

import (
	"fmt"

	"github.com/mcpjungle/mathtools/internal/config"
	"github.com/mcpjungle/mathtools/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the Tool Host or the Tool Client",
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "1",
	},
}

var (
	runCmdBindPort    string
	runCmdBindAddress string
)

func init() {
	runCmd.PersistentFlags().StringVar(
		&runCmdBindPort,
		"port",
		"",
		fmt.Sprintf("port of the Tool Host (overrides env var %s, default %s)", config.BindPortEnvVar, config.BindPortDefault),
	)
	runCmd.PersistentFlags().StringVar(
		&runCmdBindAddress,
		"bind-address",
		"",
		fmt.Sprintf(
			"address of the Tool Host (overrides env var %s, default %s)",
			config.BindAddressEnvVar, config.BindAddressDefault,
		),
	)

	rootCmd.AddCommand(runCmd)
}

// loadRunConfig resolves the configuration with the run flags applied on top.
// precedence: command line flag > environment variable > config file > default
func loadRunConfig() (*config.Config, error) {
	c, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if runCmdBindPort != "" {
		c.Port = runCmdBindPort
	}
	if runCmdBindAddress != "" {
		c.BindAddress = runCmdBindAddress
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func newLogger(c *config.Config, defaultLevel string) (*zap.Logger, error) {
	level := c.LogLevel
	if level == "" {
		level = defaultLevel
	}
	l, err := logger.New(level, c.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return l, nil
}
