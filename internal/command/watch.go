package command

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/reconcile"
	"github.com/adamavenir/auradm/internal/stream"
)

type passRecord struct {
	Seq      int    `json:"seq"`
	Selected int64  `json:"selected"`
	Threads  int    `json:"threads"`
	Messages int    `json:"messages"`
	Outcome  string `json:"outcome"`
	Trigger  string `json:"trigger"`
}

// NewWatchCmd creates the watch command.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the reconciliation loop headless, printing each pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetContext(cmd)
			if err != nil {
				return writeCommandError(cmd, err)
			}
			defer ctx.Close()

			passes, _ := cmd.Flags().GetInt("passes")
			addr, _ := cmd.Flags().GetString("metrics-addr")
			if addr == "" {
				addr = ctx.Config.Metrics.Addr
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if addr != "" {
				go func() {
					if err := ctx.Metrics.Serve(runCtx, addr); err != nil {
						ctx.Logger.Error("metrics server", zap.String("addr", addr), zap.Error(err))
					}
				}()
			}
			wakes, err := startStream(runCtx, ctx)
			if err != nil {
				return writeCommandError(cmd, err)
			}

			return watchLoop(runCtx, cmd, ctx, wakes, passes)
		},
	}

	cmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().Int("passes", 0, "stop after this many passes (0 runs until interrupted)")
	return cmd
}

// startStream connects the wake stream when one is configured. The
// returned channel is nil otherwise.
func startStream(ctx context.Context, cc *CommandContext) (chan stream.Wake, error) {
	if cc.Config.Server.StreamURL == "" {
		return nil, nil
	}
	listener, err := stream.New(cc.Config.Server.StreamURL, cc.Tokens, stream.WithLogger(cc.Logger))
	if err != nil {
		return nil, err
	}
	wakes := make(chan stream.Wake, 16)
	go listener.Run(ctx, wakes)
	return wakes, nil
}

func watchLoop(runCtx context.Context, cmd *cobra.Command, ctx *CommandContext, wakes <-chan stream.Wake, limit int) error {
	ticker := time.NewTicker(ctx.Config.Poll.MessagesInterval.Duration)
	defer ticker.Stop()

	trigger := "start"
	for count := 1; ; count++ {
		res := ctx.Controller.Pass(runCtx)
		if err := reportPass(cmd, ctx, res, trigger); err != nil {
			return err
		}
		if res.Threads.Kind == api.KindAuth {
			return writeCommandError(cmd, passError(res))
		}
		if limit > 0 && count >= limit {
			return nil
		}

		select {
		case <-runCtx.Done():
			return nil
		case <-ticker.C:
			trigger = "tick"
		case wake := <-wakes:
			trigger = wake.Type
		}
	}
}

func reportPass(cmd *cobra.Command, ctx *CommandContext, res reconcile.PassResult, trigger string) error {
	record := passRecord{
		Seq:      res.Seq,
		Selected: ctx.Controller.Selected(),
		Threads:  len(ctx.Controller.Threads().Rows),
		Messages: len(ctx.Controller.Messages().Entries),
		Outcome:  "ok",
		Trigger:  trigger,
	}
	if err := passError(res); err != nil {
		record.Outcome = err.Error()
	}
	var suppressed bool
	if res.Messages != nil {
		suppressed = res.Messages.Suppressed
	}
	ctx.Logger.Info("pass",
		zap.Int("seq", record.Seq),
		zap.Int64("thread_id", record.Selected),
		zap.Int("threads", record.Threads),
		zap.Int("messages", record.Messages),
		zap.Bool("suppressed", suppressed),
		zap.String("trigger", trigger),
		zap.Duration("duration", res.Duration))

	if ctx.JSONMode {
		return writeJSON(cmd, record)
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "pass %d [%s]: %d threads, selected #%d, %d messages, %s\n",
		record.Seq, record.Trigger, record.Threads, record.Selected, record.Messages, record.Outcome)
	return err
}
