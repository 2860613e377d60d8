// Package agent implements the Tool Client: it locates or spawns a Tool Host,
// discovers its catalog over MCP and drives the interactive multiply loop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/mcpjungle/mathtools/client"
	"github.com/mcpjungle/mathtools/pkg/types"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zapio"
)

const (
	// DefaultReadyTimeout bounds the wait for a spawned host to answer its health check.
	DefaultReadyTimeout = 10 * time.Second

	readyPollInterval  = 100 * time.Millisecond
	healthProbeTimeout = 2 * time.Second
	stopGracePeriod    = 5 * time.Second
)

// LaunchConfig describes where the Tool Host is expected and how to start one if none answers.
type LaunchConfig struct {
	// BaseURL is the root URL of the host, eg. http://127.0.0.1:8765
	BaseURL string

	// Command and Args start a host listening on BaseURL. If Command is empty, no host is spawned.
	Command string
	Args    []string
	// Env is appended to the current process environment for the child.
	Env []string

	ReadyTimeout time.Duration
	Logger       *zap.Logger
}

// LaunchedHost is a reachable Tool Host. If the client spawned it, the child process is
// owned by the LaunchedHost and terminated by Close.
type LaunchedHost struct {
	BaseURL string

	cmd       *exec.Cmd
	exited    chan struct{}
	waitErr   error
	stderr    *zapio.Writer
	logger    *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

// Spawned reports whether this client started the host process.
func (h *LaunchedHost) Spawned() bool {
	return h.cmd != nil
}

// Pid returns the process id of the spawned host, or 0 if the host was already running.
func (h *LaunchedHost) Pid() int {
	if h.cmd == nil || h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}

// ConnectOrSpawn returns a reachable host. An already running host at BaseURL is used as is;
// otherwise the configured command is started and polled until it is ready.
func ConnectOrSpawn(ctx context.Context, c LaunchConfig) (*LaunchedHost, error) {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.ReadyTimeout <= 0 {
		c.ReadyTimeout = DefaultReadyTimeout
	}

	api := client.NewClient(c.BaseURL, "", &http.Client{Timeout: healthProbeTimeout})
	if err := api.Health(); err == nil {
		c.Logger.Info("using running tool host", zap.String("url", c.BaseURL))
		return &LaunchedHost{BaseURL: c.BaseURL, logger: c.Logger}, nil
	}

	if c.Command == "" {
		return nil, types.NewToolError(
			types.ErrorKindHostUnreachable,
			fmt.Sprintf("no tool host is answering at %s and no host command is configured", c.BaseURL),
		)
	}

	h, err := spawn(c)
	if err != nil {
		return nil, err
	}

	if err := h.waitReady(ctx, api, c.ReadyTimeout); err != nil {
		_ = h.kill()
		return nil, err
	}
	c.Logger.Info("spawned tool host is ready", zap.String("url", c.BaseURL), zap.Int("pid", h.Pid()))
	return h, nil
}

func spawn(c LaunchConfig) (*LaunchedHost, error) {
	cmd := exec.Command(c.Command, c.Args...)
	cmd.Env = append(os.Environ(), c.Env...)

	// the host logs to stderr, forward every line into the client log
	stderr := &zapio.Writer{Log: c.Logger.Named("host"), Level: zapcore.InfoLevel}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, types.NewToolError(
			types.ErrorKindHostUnreachable,
			fmt.Sprintf("failed to start tool host '%s': %v", c.Command, err),
		)
	}
	c.Logger.Info("spawned tool host", zap.String("command", c.Command), zap.Int("pid", cmd.Process.Pid))

	h := &LaunchedHost{
		BaseURL: c.BaseURL,
		cmd:     cmd,
		exited:  make(chan struct{}),
		stderr:  stderr,
		logger:  c.Logger,
	}
	go func() {
		h.waitErr = cmd.Wait()
		_ = stderr.Close()
		close(h.exited)
	}()
	return h, nil
}

func (h *LaunchedHost) waitReady(ctx context.Context, api *client.Client, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return types.NewToolError(types.ErrorKindHostUnreachable, "gave up waiting for the tool host: "+ctx.Err().Error())
		case <-h.exited:
			return types.NewToolError(
				types.ErrorKindHostUnreachable,
				fmt.Sprintf("tool host exited before becoming ready: %v", h.waitErr),
			)
		case <-deadline.C:
			return types.NewToolError(
				types.ErrorKindHostUnreachable,
				fmt.Sprintf("tool host at %s was not ready after %s", h.BaseURL, timeout),
			)
		case <-ticker.C:
			if err := api.Health(); err == nil {
				return nil
			}
		}
	}
}

// Close terminates the spawned host: interrupt first, then kill if it has not exited
// within the grace period. Closing a host that was not spawned is a no-op.
func (h *LaunchedHost) Close() error {
	h.closeOnce.Do(func() {
		if h.cmd == nil {
			return
		}
		h.closeErr = h.stop()
	})
	return h.closeErr
}

func (h *LaunchedHost) stop() error {
	select {
	case <-h.exited:
		return nil
	default:
	}

	// interrupts cannot be delivered to child processes on windows
	if runtime.GOOS == "windows" {
		return h.kill()
	}

	if err := h.cmd.Process.Signal(os.Interrupt); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			<-h.exited
			return nil
		}
		h.logger.Warn("failed to interrupt tool host, killing it", zap.Error(err))
		return h.kill()
	}

	select {
	case <-h.exited:
		h.logger.Info("tool host stopped", zap.Int("pid", h.Pid()))
		return nil
	case <-time.After(stopGracePeriod):
		h.logger.Warn("tool host did not stop in time, killing it", zap.Int("pid", h.Pid()))
		return h.kill()
	}
}

func (h *LaunchedHost) kill() error {
	if err := h.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill tool host: %w", err)
	}
	<-h.exited
	return nil
}
