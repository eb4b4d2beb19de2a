package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adamavenir/auradm/internal/chat"
	"github.com/adamavenir/auradm/internal/logging"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive direct messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonMode, _ := cmd.Flags().GetBool("json"); jsonMode {
				return writeCommandError(cmd, fmt.Errorf("--json not supported for interactive chat"))
			}
			if logFile, _ := cmd.Flags().GetString("log-file"); logFile == logging.Stderr {
				return writeCommandError(cmd, fmt.Errorf("chat owns the terminal; pass a file to --log-file"))
			}

			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			photoID := int64(0)
			if raw, _ := cmd.Flags().GetString("photo"); raw != "" {
				if photoID, err = parseID("photo", raw); err != nil {
					return writeCommandError(cmd, err)
				}
			}
			owner, _ := cmd.Flags().GetString("owner")

			if addr := ctx.Config.Metrics.Addr; addr != "" {
				go func() {
					if err := ctx.Metrics.Serve(cmd.Context(), addr); err != nil {
						ctx.Logger.Error("metrics server", zap.String("addr", addr), zap.Error(err))
					}
				}()
			}
			wakes, err := startStream(cmd.Context(), ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			var notifier chat.Notifier
			if ctx.Config.Notify.Desktop {
				notifier = chat.NewDesktopNotifier()
			}

			opts := chat.Options{
				Backend:          ctx.Client,
				Controller:       ctx.Controller,
				Viewer:           ctx.Account,
				MessagesInterval: ctx.Config.Poll.MessagesInterval.Duration,
				CommentsInterval: ctx.Config.Poll.CommentsInterval.Duration,
				SearchDelay:      ctx.Config.Poll.SearchDebounce.Duration,
				SearchMinChars:   ctx.Config.Poll.SearchMinChars,
				Notifier:         notifier,
				Logger:           ctx.Logger,
				CommentRenders:   ctx.Metrics,
				PhotoID:          photoID,
				PhotoOwner:       owner,
				Wakes:            wakes,
			}
			if err := chat.Run(opts); err != nil {
				return writeCommandError(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().String("photo", "", "open the comments of this photo id")
	cmd.Flags().String("owner", "", "username owning the photo's profile")
	return cmd
}
