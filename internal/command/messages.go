package command

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/reconcile"
)

// NewMessagesCmd creates the messages command.
func NewMessagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "messages [thread-id]",
		Short: "Show the messages of the selected conversation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			if len(args) == 1 {
				id, err := parseID("thread", args[0])
				if err != nil {
					return writeCommandError(cmd, err)
				}
				ctx.Controller.Select(id)
			}
			if err := selectedPass(cmd, ctx); err != nil {
				return writeCommandError(cmd, err)
			}

			view := ctx.Controller.Messages()
			if ctx.JSONMode {
				return writeJSON(cmd, view)
			}
			writeMessageList(cmd.OutOrStdout(), ctx.Controller.Header(), view)
			return nil
		},
	}

	return cmd
}

// selectedPass runs one pass and requires a selection afterwards.
func selectedPass(cmd *cobra.Command, ctx *CommandContext) error {
	res := ctx.Controller.Pass(cmd.Context())
	if err := passError(res); err != nil {
		return err
	}
	if ctx.Controller.Selected() == 0 {
		return errors.New(reconcile.NoticeSelect)
	}
	return nil
}

// threadFlag applies --thread before the pass so it picks the thread.
func threadFlag(cmd *cobra.Command, ctx *CommandContext) error {
	raw, _ := cmd.Flags().GetString("thread")
	if raw == "" {
		return nil
	}
	id, err := parseID("thread", raw)
	if err != nil {
		return err
	}
	ctx.Controller.Select(id)
	return nil
}
