package command

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/reactions"
)

// NewLikeCmd creates the like command.
func NewLikeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "like <photo-id>",
		Short: "Toggle your like on a profile photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			photoID, err := parseID("photo", args[0])
			if err != nil {
				return writeCommandError(cmd, err)
			}
			initial, err := ctx.Client.GetLike(cmd.Context(), photoID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			like := reactions.NewLike(initial, !ctx.Client.Authenticated())
			state, err := reactions.ToggleLike(cmd.Context(), ctx.Client, like, photoID)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd, state)
			}
			heart := "♡"
			if state.Liked {
				heart = "♥"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", heart, humanize.Comma(int64(state.Count)))
			return nil
		},
	}

	return cmd
}
