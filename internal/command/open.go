package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/search"
)

// NewOpenCmd creates the open command.
func NewOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open <username>",
		Short: "Start or resume a conversation and select it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			username := strings.TrimPrefix(strings.TrimSpace(args[0]), "@")
			finder := search.NewCoordinator(ctx.Client, ctx.Config.Poll.SearchMinChars, ctx.Logger)
			thread, err := finder.Open(cmd.Context(), username)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			ctx.Controller.Select(thread.ID)

			if ctx.JSONMode {
				return writeJSON(cmd, thread)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Chat started with @%s (thread #%d)\n", username, thread.ID)
			return nil
		},
	}

	return cmd
}
