package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mcpjungle/mathtools/internal/agent"
	"github.com/mcpjungle/mathtools/internal/config"
	"github.com/mcpjungle/mathtools/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var runClientCmdNoSpawn bool

var runClientCmd = &cobra.Command{
	Use:   "client",
	Short: "Start an interactive Tool Client session",
	Long: "Connects to the Tool Host, discovers its tools and prompts for pairs of numbers to multiply.\n\n" +
		"If no host is answering on the configured address, one is started in the background and\n" +
		"stopped again when the session ends. The wait for a started host to become ready is\n" +
		"bounded by " + config.HostReadyTimeoutSecEnvVar + " (in seconds).\n\n" +
		"Type two numbers separated by a space, eg. '3 4'.\n" +
		"Type 'exit' or 'quit', enter an empty line or press Ctrl-C to end the session.",
	Args: cobra.NoArgs,
	RunE: runClient,
}

func init() {
	runClientCmd.Flags().BoolVar(
		&runClientCmdNoSpawn,
		"no-spawn",
		false,
		"only connect to a running Tool Host, never start one",
	)

	runCmd.AddCommand(runClientCmd)
}

// hostCommandArgs returns the arguments that start a host matching the client's configuration.
func hostCommandArgs(c *config.Config) []string {
	args := []string{"run", "host", "--port", c.Port, "--bind-address", c.BindAddress}
	if configFilePath != "" {
		args = append(args, "--config", configFilePath)
	}
	return args
}

func runClient(cmd *cobra.Command, args []string) error {
	c, err := loadRunConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(c, "warn")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	launch := agent.LaunchConfig{
		BaseURL:      c.BaseURL(),
		ReadyTimeout: time.Duration(c.ReadyTimeoutSec) * time.Second,
		Logger:       log,
	}
	if !runClientCmdNoSpawn {
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("failed to locate the mathtools executable: %w", err)
		}
		launch.Command = exe
		launch.Args = hostCommandArgs(c)
	}

	host, err := agent.ConnectOrSpawn(ctx, launch)
	if err != nil {
		return err
	}

	session, err := agent.NewSession(agent.SessionConfig{Host: host, Logger: log})
	if err != nil {
		_ = host.Close()
		return err
	}
	// the spawned host must be stopped on every exit path
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("failed to close session", zap.Error(err))
		}
	}()

	if err := session.Connect(ctx); err != nil {
		return err
	}
	tools, err := session.Discover(ctx)
	if err != nil {
		return err
	}

	info := session.ServerInfo()
	origin := "running"
	if host.Spawned() {
		origin = "started"
	}
	cmd.Printf("Connected to %s %s at %s (%s)\n", info.Name, info.Version, host.BaseURL, origin)
	cmd.Println("Available tools:")
	for _, t := range tools {
		cmd.Printf("  %s\n", formatSignature(t))
	}
	cmd.Println()

	err = agent.RunREPL(ctx, session, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil && !errors.Is(err, ctx.Err()) {
		return err
	}
	return nil
}

// formatSignature renders a descriptor as name(param: type, ...) -> output  description
func formatSignature(t types.ToolDescriptor) string {
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	sig := fmt.Sprintf("%s(%s)", t.Name, strings.Join(params, ", "))
	if t.OutputType != "" {
		sig += " -> " + t.OutputType
	}
	if t.Description != "" {
		sig += "  " + t.Description
	}
	return sig
}
