package command

import (
	"github.com/spf13/cobra"
)

// NewThreadsCmd creates the threads command.
func NewThreadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			res := ctx.Controller.Pass(cmd.Context())
			if err := passError(res); err != nil {
				return writeCommandError(cmd, err)
			}

			view := ctx.Controller.Threads()
			if ctx.JSONMode {
				return writeJSON(cmd, view)
			}
			writeThreadList(cmd.OutOrStdout(), view)
			return nil
		},
	}

	return cmd
}
