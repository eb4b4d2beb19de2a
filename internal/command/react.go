package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/reactions"
)

// NewReactCmd creates the react command.
func NewReactCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "react <message-id> <emoji>",
		Short: "Toggle your reaction on a message",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			id, err := parseID("message", args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if err := threadFlag(cmd, ctx); err != nil {
				return writeCommandError(cmd, err)
			}
			if err := selectedPass(cmd, ctx); err != nil {
				return writeCommandError(cmd, err)
			}
			msg, ok := ctx.Controller.Message(id)
			if !ok {
				return writeCommandError(cmd, fmt.Errorf("message #%d not found in the selected thread", id))
			}

			op, err := reactions.Toggle(cmd.Context(), ctx.Client, msg, args[1])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			// Show what the server now holds rather than patching locally.
			ctx.Controller.SyncMessages(cmd.Context(), 0, ctx.Controller.Selected())

			if ctx.JSONMode {
				return writeJSON(cmd, map[string]any{"id": id, "emoji": args[1], "op": op.String()})
			}
			verb := "Added"
			if op == reactions.OpRemove {
				verb = "Removed"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s on #%d\n", verb, args[1], id)
			for _, entry := range ctx.Controller.Messages().Entries {
				if entry.Message.ID != id {
					continue
				}
				for _, badge := range entry.Badges {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s %d\n", badge.Emoji, badge.Count)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("thread", "", "thread id (default: selected thread)")
	return cmd
}
