package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewSendCmd creates the send command.
func NewSendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Send a message to the selected conversation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			if err := threadFlag(cmd, ctx); err != nil {
				return writeCommandError(cmd, err)
			}
			if err := selectedPass(cmd, ctx); err != nil {
				return writeCommandError(cmd, err)
			}

			msg, err := ctx.Client.SendMessage(cmd.Context(), ctx.Controller.Selected(), strings.Join(args, " "))
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, msg)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sent message #%d\n", msg.ID)
			return nil
		},
	}

	cmd.Flags().String("thread", "", "thread id (default: selected thread)")
	return cmd
}
