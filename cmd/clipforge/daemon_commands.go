package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"clipforge/internal/ipc"
)

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the clipforge daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			client, err := ctx.dialClient()
			if err != nil {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
				client, err = launchDaemon(ctx, 10*time.Second)
				if err != nil {
					return err
				}
			}
			defer client.Close()

			resp, err := client.Start()
			if err != nil {
				return fmt.Errorf("start daemon: %w", err)
			}
			if resp.Started {
				fmt.Fprintln(stdout, "Daemon started")
			} else {
				fmt.Fprintln(stdout, resp.Message)
			}
			return nil
		},
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the clipforge daemon workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			client, err := ctx.dialClient()
			if err != nil {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			defer client.Close()

			if _, err := client.Stop(); err != nil {
				return fmt.Errorf("stop daemon: %w", err)
			}
			fmt.Fprintln(stdout, "Daemon stopped")
			return nil
		},
	}

	restartCmd := &cobra.Command{
		Use:   "restart",
		Short: "Restart the clipforge daemon workflow",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			if client, err := ctx.dialClient(); err == nil {
				_, stopErr := client.Stop()
				client.Close()
				if stopErr != nil {
					return fmt.Errorf("stop daemon: %w", stopErr)
				}
				fmt.Fprintln(stdout, "Daemon stopped")
			}

			client, err := ctx.dialClient()
			if err != nil {
				fmt.Fprintln(stdout, "Daemon not running, launching...")
				client, err = launchDaemon(ctx, 10*time.Second)
				if err != nil {
					return err
				}
			}
			defer client.Close()

			if _, err := client.Start(); err != nil {
				return fmt.Errorf("start daemon: %w", err)
			}
			fmt.Fprintln(stdout, "Daemon restarted")
			return nil
		},
	}

	var statusJSON bool
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()

			client, err := ctx.dialClient()
			if err != nil {
				if statusJSON {
					return writeJSON(cmd, map[string]any{"running": false})
				}
				colorize := shouldColorize(stdout)
				fmt.Fprintln(stdout, renderSectionHeader("Daemon", colorize))
				fmt.Fprintln(stdout, renderStatusLine("Daemon", statusError, "not running", colorize))
				return nil
			}
			defer client.Close()

			status, err := client.Status()
			if err != nil {
				return err
			}
			if statusJSON {
				return writeJSON(cmd, status)
			}
			renderDaemonStatus(stdout, status)
			return nil
		},
	}
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Emit status as JSON")

	return []*cobra.Command{startCmd, stopCmd, restartCmd, statusCmd}
}

// launchDaemon spawns clipforged in the background and waits for its socket
// to accept connections. The daemon binary is expected next to the CLI binary
// or on PATH.
func launchDaemon(ctx *commandContext, timeout time.Duration) (*ipc.Client, error) {
	binary, err := daemonBinary()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(binary)
	cmd.Env = os.Environ()
	if ctx.configFlag != nil && *ctx.configFlag != "" {
		cmd.Env = append(cmd.Env, "CLIPFORGE_CONFIG="+*ctx.configFlag)
	}
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("launch clipforged: %w", err)
	}
	if err := cmd.Process.Release(); err != nil {
		return nil, fmt.Errorf("detach clipforged: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		client, err := ipc.Dial(ctx.socketPath())
		if err == nil {
			return client, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("daemon did not come up within %s: %w", timeout, err)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

func daemonBinary() (string, error) {
	if exe, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(exe), "clipforged")
		if info, statErr := os.Stat(candidate); statErr == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	if path, err := exec.LookPath("clipforged"); err == nil {
		return path, nil
	}
	return "", errors.New("clipforged binary not found next to clipforge or on PATH")
}

func renderDaemonStatus(stdout io.Writer, status *ipc.StatusResponse) {
	colorize := shouldColorize(stdout)

	fmt.Fprintln(stdout, renderSectionHeader("Daemon", colorize))
	runningKind := statusError
	runningDetail := "stopped"
	if status.Running {
		runningKind = statusOK
		runningDetail = fmt.Sprintf("running (pid %d)", status.PID)
	}
	fmt.Fprintln(stdout, renderStatusLine("Workflow", runningKind, runningDetail, colorize))
	fmt.Fprintln(stdout, renderStatusLine("Queue DB", statusOK, status.QueueDBPath, colorize))
	if status.LastError != "" {
		fmt.Fprintln(stdout, renderStatusLine("Last error", statusWarn, status.LastError, colorize))
	}
	if status.LastItem != nil {
		detail := fmt.Sprintf("#%d %s (%s)", status.LastItem.ID, status.LastItem.Title, status.LastItem.Status)
		fmt.Fprintln(stdout, renderStatusLine("Last item", statusOK, detail, colorize))
	}
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, renderSectionHeader("Stages", colorize))
	for _, health := range status.StageHealth {
		kind := statusOK
		detail := "ready"
		if !health.Ready {
			kind = statusError
			detail = health.Detail
		}
		fmt.Fprintln(stdout, renderStatusLine(health.Name, kind, detail, colorize))
	}
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, renderSectionHeader("Dependencies", colorize))
	for _, dep := range status.Dependencies {
		switch {
		case dep.Available:
			message := "Ready"
			if dep.Command != "" {
				message = fmt.Sprintf("Ready (command: %s)", dep.Command)
			}
			fmt.Fprintln(stdout, renderStatusLine(dep.Name, statusOK, message, colorize))
		case dep.Optional:
			fmt.Fprintln(stdout, renderStatusLine(dep.Name, statusWarn, dep.Detail+" (optional)", colorize))
		default:
			fmt.Fprintln(stdout, renderStatusLine(dep.Name, statusError, dep.Detail, colorize))
		}
	}
	fmt.Fprintln(stdout)

	fmt.Fprintln(stdout, renderSectionHeader("Queue Status", colorize))
	rows := buildQueueStatusRows(status.QueueStats)
	if len(rows) == 0 {
		fmt.Fprintln(stdout, "Queue is empty")
		return
	}
	fmt.Fprintln(stdout, renderTable([]string{"Status", "Count"}, rows, 1))
}
