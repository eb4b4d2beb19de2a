package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/comments"
	"github.com/adamavenir/auradm/internal/types"
)

// NewCommentsCmd creates the comments command.
func NewCommentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "comments <photo-id>",
		Short: "Show, post or delete profile photo comments",
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
			post, _ := cmd.Flags().GetString("post")
			replyTo, _ := cmd.Flags().GetString("reply-to")
			deleteID, _ := cmd.Flags().GetString("delete")
			owner, _ := cmd.Flags().GetString("owner")

			out := cmd.OutOrStdout()
			switch {
			case deleteID != "":
				id, err := parseID("comment", deleteID)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if err := ctx.Client.DeleteComment(cmd.Context(), id); err != nil {
					return writeCommandError(cmd, err)
				}
				if !ctx.JSONMode {
					fmt.Fprintf(out, "Comment deleted #%d\n", id)
				}
			case post != "":
				if ctx.Account == "" {
					return writeCommandError(cmd, errors.New("log in to comment"))
				}
				var parent *int64
				if replyTo != "" {
					id, err := parseID("comment", replyTo)
					if err != nil {
						return writeCommandError(cmd, err)
					}
					parent = &id
				}
				c, err := ctx.Client.PostComment(cmd.Context(), photoID, post, parent)
				if err != nil {
					return writeCommandError(cmd, err)
				}
				if !ctx.JSONMode {
					fmt.Fprintf(out, "Comment posted #%d\n", c.ID)
				}
			}

			list, err := ctx.Client.ListComments(cmd.Context(), photoID)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, list)
			}
			fmt.Fprintf(out, "%d comments\n", comments.Count(list))
			comments.Walk(list, func(c types.Comment, depth int) {
				suffix := ""
				if comments.CanDelete(ctx.Account, owner, c.Username) {
					suffix = "  [deletable]"
				}
				fmt.Fprintf(out, "%s#%d %s: %s%s\n", strings.Repeat("  ", depth), c.ID, c.Username, c.Text, suffix)
			})
			return nil
		},
	}

	cmd.Flags().String("post", "", "post a comment")
	cmd.Flags().String("reply-to", "", "reply to this comment id")
	cmd.Flags().String("delete", "", "delete this comment id")
	cmd.Flags().String("owner", "", "profile owner (for delete permissions)")
	return cmd
}
