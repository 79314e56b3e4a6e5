package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"clipforge/internal/config"
	"clipforge/internal/ipc"
	"clipforge/internal/probe"
	"clipforge/internal/queue"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Queue video files for clipping",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(client *ipc.Client, store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, arg := range args {
					if client != nil {
						resp, err := client.AddFile(arg)
						if err != nil {
							return fmt.Errorf("queue %s: %w", arg, err)
						}
						fmt.Fprintf(out, "Queued #%d %s\n", resp.Item.ID, resp.Item.Title)
						continue
					}

					path, err := resolveVideoPath(arg)
					if err != nil {
						return err
					}
					item, err := store.NewFile(cmd.Context(), path)
					if err != nil {
						return fmt.Errorf("queue %s: %w", arg, err)
					}
					fmt.Fprintf(out, "Queued #%d %s\n", item.ID, item.Title)
				}
				return nil
			})
		},
	}
}

func resolveVideoPath(arg string) (string, error) {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path %q: %w", arg, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("inspect path %q: %w", arg, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path %q is a directory", arg)
	}
	if !probe.SupportedExtension(filepath.Ext(path)) {
		return "", fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
	}
	return path, nil
}
