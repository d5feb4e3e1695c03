package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"titledb/internal/catalog"
	"titledb/internal/runlock"
)

func newCursorCommand(ctx *commandContext) *cobra.Command {
	cursorCmd := &cobra.Command{
		Use:   "cursor",
		Short: "Inspect or reset the Wii U update cursor",
	}
	cursorCmd.AddCommand(newCursorShowCommand(ctx))
	cursorCmd.AddCommand(newCursorResetCommand(ctx))
	return cursorCmd
}

func newCursorShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the last crawled update list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.consoleLogger()
			if err != nil {
				return err
			}
			value, stored, err := catalog.ReadCursor(cfg.CursorPath(), logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Path:   %s\n", cfg.CursorPath())
			fmt.Fprintf(out, "Stored: %s\n", yesNo(stored))
			fmt.Fprintf(out, "Value:  %d\n", value)
			return nil
		},
	}
}

func newCursorResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget the stored cursor so the next run crawls every update list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			lock, err := runlock.Acquire(cfg.LockPath(), nil)
			if err != nil {
				return err
			}
			defer lock.Release()

			removed, err := catalog.ResetCursor(cfg.CursorPath())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if removed {
				fmt.Fprintf(out, "Removed %s\n", cfg.CursorPath())
			} else {
				fmt.Fprintln(out, "No cursor stored")
			}
			return nil
		},
	}
}
