package command

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find users to message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			finder := search.NewCoordinator(ctx.Client, ctx.Config.Poll.SearchMinChars, ctx.Logger)
			users, err := finder.Search(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return writeCommandError(cmd, err)
			}
			if ctx.JSONMode {
				return writeJSON(cmd, users)
			}
			out := cmd.OutOrStdout()
			if len(users) == 0 {
				fmt.Fprintln(out, "No users found")
				return nil
			}
			for _, u := range users {
				if u.DisplayName != "" && u.DisplayName != u.Username {
					fmt.Fprintf(out, "@%s  %s\n", u.Username, u.DisplayName)
					continue
				}
				fmt.Fprintf(out, "@%s\n", u.Username)
			}
			return nil
		},
	}

	return cmd
}
