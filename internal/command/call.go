package command

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/adamavenir/auradm/internal/call"
	"github.com/adamavenir/auradm/internal/callsignal"
	"github.com/adamavenir/auradm/internal/reconcile"
)

// NewCallCmd creates the call command group.
func NewCallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call",
		Short: "Start or end a call in the selected conversation",
	}
	cmd.AddCommand(newCallStartCmd(), newCallEndCmd())
	return cmd
}

func newCallStartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start a video call (or voice with --voice)",
		Args:  cobra.NoArgs,
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

			modality := callsignal.Video
			if voice, _ := cmd.Flags().GetBool("voice"); voice {
				modality = callsignal.Voice
			}
			calls := call.NewManager(call.NewHeadlessSession(ctx.Logger), ctx.Client, ctx.Logger)
			target, err := calls.Start(cmd.Context(), ctx.Controller.Selected(), modality)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd, target)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Started %s call in thread #%d (session %s)\n", modality, target.ThreadID, target.SessionID)
			return nil
		},
	}

	cmd.Flags().Bool("voice", false, "start a voice call")
	cmd.Flags().String("thread", "", "thread id (default: selected thread)")
	return cmd
}

func newCallEndCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "end",
		Short: "End the newest live call in the selected conversation",
		Args:  cobra.NoArgs,
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

			invite, ok := newestLiveInvite(ctx.Controller.Messages())
			if !ok {
				return writeCommandError(cmd, fmt.Errorf("%w in thread #%d", call.ErrNoActiveCall, ctx.Controller.Selected()))
			}
			calls := call.NewManager(call.NewHeadlessSession(ctx.Logger), ctx.Client, ctx.Logger)
			if err := calls.EndIn(cmd.Context(), ctx.Controller.Selected(), invite.SessionID); err != nil {
				return writeCommandError(cmd, err)
			}

			if ctx.JSONMode {
				return writeJSON(cmd, map[string]any{"thread_id": invite.ThreadID, "ended": invite.MessageID})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Call ended (#%d)\n", invite.MessageID)
			return nil
		},
	}

	cmd.Flags().String("thread", "", "thread id (default: selected thread)")
	return cmd
}

func newestLiveInvite(view reconcile.MessageListView) (callsignal.Invite, bool) {
	for i := len(view.Entries) - 1; i >= 0; i-- {
		if inv := view.Entries[i].Invite; inv != nil && !inv.Ended {
			return *inv, true
		}
	}
	return callsignal.Invite{}, false
}
