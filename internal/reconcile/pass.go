package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// PassResult summarizes one synchronous pass.
type PassResult struct {
	Seq      int
	Threads  ThreadOutcome
	Messages *MessageOutcome
	Duration time.Duration
}

// Pass runs one full reconciliation pass synchronously: threads, then
// messages for the resolved selection. It is the blocking counterpart of
// the asynchronous BeginPass/ApplyThreads/BeginMessages/ApplyMessages
// sequence the UI drives.
func (c *Controller) Pass(ctx context.Context) PassResult {
	start := c.now()
	seq := c.BeginPass()
	res := PassResult{Seq: seq}

	if c.Unauthenticated() {
		res.Threads = c.ApplyThreads(seq, nil, nil)
		return res
	}

	threads, err := c.backend.ListThreads(ctx)
	res.Threads = c.ApplyThreads(seq, threads, err)
	if res.Threads.FetchMessages != 0 {
		out := c.SyncMessages(ctx, seq, res.Threads.FetchMessages)
		res.Messages = &out
	}
	res.Duration = c.now().Sub(start)
	c.logger.Debug("pass complete",
		zap.Int("seq", seq),
		zap.Int64("thread_id", c.selected),
		zap.Int("threads", len(c.threads)),
		zap.Duration("duration", res.Duration))
	return res
}

// SyncMessages fetches and applies the messages of threadID. pass is zero
// for an out-of-band refresh such as after a reaction toggle.
func (c *Controller) SyncMessages(ctx context.Context, pass int, threadID int64) MessageOutcome {
	ticket := c.BeginMessages(pass, threadID)
	messages, err := c.backend.ListMessages(ctx, threadID)
	return c.ApplyMessages(ticket, messages, err)
}
