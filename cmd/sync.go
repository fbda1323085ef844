package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh tasks and groups once and print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Duration(cfg.RequestTimeoutSeconds)*time.Second)
		defer cancel()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.session.Token() == "" {
			return fmt.Errorf("not logged in, run `task-pilot login` first")
		}

		a.tasks.Refresh(ctx)
		a.groups.Refresh(ctx)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tasks:   %d (overdue %d, today %d)\n",
			len(a.tasks.Tasks()), len(a.tasks.OverdueTasks()), len(a.tasks.TodayTasks()))
		fmt.Fprintf(out, "groups:  %d\n", len(a.groups.Groups()))
		fmt.Fprintf(out, "users:   %d\n", len(a.groups.Users()))

		if msg := a.tasks.Err(); msg != "" {
			fmt.Fprintf(out, "tasks error:  %s\n", msg)
		}
		if msg := a.groups.Err(); msg != "" {
			fmt.Fprintf(out, "groups error: %s\n", msg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
