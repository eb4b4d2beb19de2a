// Package reconcile keeps the local thread list, selection and active
// message list consistent with server state.
//
// Every pass runs thread reconciliation, then message synchronization for
// the resolved selection, then derives call and reaction state. Completions
// may arrive late or out of order; each carries the sequence number it was
// started with and is discarded unless it is still the newest for the
// current selection.
package reconcile

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/callsignal"
	"github.com/adamavenir/auradm/internal/types"
)

// Backend fetches server state.
type Backend interface {
	ListThreads(ctx context.Context) ([]types.Thread, error)
	ListMessages(ctx context.Context, threadID int64) ([]types.Message, error)
}

// SelectionStore persists the selected thread.
type SelectionStore interface {
	Load() (int64, bool, error)
	Save(threadID int64) error
	Clear() error
}

// Recorder observes pass outcomes.
type Recorder interface {
	ObservePass(duration time.Duration, kind api.ErrorKind)
	ObserveDiscard(reason string)
}

const (
	DiscardStale      = "stale"
	DiscardSwitched   = "switched"
	DiscardSuppressed = "suppressed"
)

// Ticket identifies one in-flight message fetch.
type Ticket struct {
	Seq      int
	Pass     int
	ThreadID int64
}

// ThreadOutcome reports what applying a thread list did.
type ThreadOutcome struct {
	Applied bool
	// FetchMessages is the thread whose messages this pass must fetch next,
	// or zero.
	FetchMessages int64
	Selected      int64
	Cleared       bool
	AutoSelected  bool
	Kind          api.ErrorKind
}

// MessageOutcome reports what applying a message list did.
type MessageOutcome struct {
	Applied    bool
	Suppressed bool
	Stale      bool
	Kind       api.ErrorKind
}

// Controller owns the selection, hover flag and last applied server state.
// It is not safe for concurrent use; callers serialize access the way the
// UI event loop does.
type Controller struct {
	backend  Backend
	store    SelectionStore
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time

	passSeq        int
	appliedPass    int
	selectedAtPass int
	passStarted    map[int]time.Time

	msgSeq     int
	appliedMsg int

	selected int64
	threads  []types.Thread
	inbox    InboxState
	hovering bool

	msgState MessagesState
	entries  []MessageEntry
	messages []types.Message
}

// Option customizes a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

type nopRecorder struct{}

func (nopRecorder) ObservePass(time.Duration, api.ErrorKind) {}
func (nopRecorder) ObserveDiscard(string)                    {}

// New builds a Controller and restores the persisted selection.
func New(backend Backend, store SelectionStore, opts ...Option) *Controller {
	c := &Controller{
		backend:     backend,
		store:       store,
		logger:      zap.NewNop(),
		recorder:    nopRecorder{},
		now:         time.Now,
		passStarted: make(map[int]time.Time),
	}
	for _, opt := range opts {
		opt(c)
	}
	if store != nil {
		id, ok, err := store.Load()
		if err != nil {
			c.logger.Warn("restore selection", zap.Error(err))
		} else if ok {
			c.selected = id
			c.msgState = MessagesLoading
		}
	}
	return c
}

// Selected returns the selected thread id, zero when none.
func (c *Controller) Selected() int64 { return c.selected }

// Hovering reports whether the quick-reaction control is hovered.
func (c *Controller) Hovering() bool { return c.hovering }

// SetHovering sets the flag that suppresses message list replacement.
func (c *Controller) SetHovering(hovering bool) { c.hovering = hovering }

// Unauthenticated reports whether the viewer must log in. Polling stops.
func (c *Controller) Unauthenticated() bool { return c.inbox == InboxUnauthenticated }

// MarkUnauthenticated puts the controller in the logged-out state.
func (c *Controller) MarkUnauthenticated() {
	c.inbox = InboxUnauthenticated
}

// BeginPass starts a reconciliation pass and returns its sequence number.
func (c *Controller) BeginPass() int {
	c.passSeq++
	c.passStarted[c.passSeq] = c.now()
	return c.passSeq
}

// ApplyThreads applies the thread list fetched by pass seq.
func (c *Controller) ApplyThreads(seq int, threads []types.Thread, err error) ThreadOutcome {
	if c.inbox == InboxUnauthenticated {
		c.finishPass(seq, api.KindAuth)
		return ThreadOutcome{Kind: api.KindAuth}
	}
	if seq <= c.appliedPass {
		c.recorder.ObserveDiscard(DiscardStale)
		c.logger.Debug("stale thread list discarded", zap.Int("seq", seq), zap.Int("applied", c.appliedPass))
		delete(c.passStarted, seq)
		return ThreadOutcome{Selected: c.selected}
	}
	c.appliedPass = seq

	if err != nil {
		kind := api.Classify(err)
		if kind == api.KindAuth {
			c.inbox = InboxUnauthenticated
		} else {
			c.inbox = InboxUnavailable
		}
		c.logger.Warn("thread reconcile failed", zap.Int("seq", seq), zap.String("kind", kind.String()), zap.Error(err))
		c.finishPass(seq, kind)
		return ThreadOutcome{Selected: c.selected, Kind: kind}
	}

	c.threads = threads
	c.inbox = InboxReady
	out := ThreadOutcome{Applied: true}

	// A pass started before the user picked the current thread cannot speak
	// for it: the thread may have been created after the list was fetched.
	authoritative := seq > c.selectedAtPass

	if c.selected != 0 && authoritative && c.findThread(c.selected) == nil {
		c.logger.Info("selected thread disappeared", zap.Int64("thread_id", c.selected))
		c.clearSelection()
		out.Cleared = true
	}
	if c.selected == 0 && len(threads) > 0 && authoritative {
		c.setSelection(threads[0].ID)
		out.AutoSelected = true
	}

	out.Selected = c.selected
	if c.selected != 0 {
		out.FetchMessages = c.selected
	} else {
		c.finishPass(seq, api.KindNone)
	}
	return out
}

// BeginMessages starts a message fetch for threadID. pass is the pass the
// fetch belongs to, or zero for an out-of-band refresh.
func (c *Controller) BeginMessages(pass int, threadID int64) Ticket {
	c.msgSeq++
	return Ticket{Seq: c.msgSeq, Pass: pass, ThreadID: threadID}
}

// ApplyMessages applies a fetched message list. The result is discarded when
// the selection has moved on, when a newer fetch was already applied, or
// while the quick-reaction control is hovered.
func (c *Controller) ApplyMessages(t Ticket, messages []types.Message, err error) MessageOutcome {
	kind := api.Classify(err)
	defer c.finishPass(t.Pass, kind)

	if t.ThreadID != c.selected {
		c.recorder.ObserveDiscard(DiscardSwitched)
		c.logger.Debug("messages for deselected thread discarded", zap.Int64("thread_id", t.ThreadID))
		return MessageOutcome{Stale: true, Kind: kind}
	}
	if t.Seq <= c.appliedMsg {
		c.recorder.ObserveDiscard(DiscardStale)
		return MessageOutcome{Stale: true, Kind: kind}
	}
	if c.hovering {
		c.recorder.ObserveDiscard(DiscardSuppressed)
		c.logger.Debug("message refresh suppressed while hovering", zap.Int64("thread_id", t.ThreadID), zap.Int("seq", t.Seq))
		return MessageOutcome{Suppressed: true, Kind: kind}
	}
	c.appliedMsg = t.Seq

	switch kind {
	case api.KindNone:
	case api.KindAuth:
		c.inbox = InboxUnauthenticated
		return MessageOutcome{Kind: kind}
	case api.KindForbidden:
		c.msgState = MessagesDenied
		c.messages = nil
		c.entries = nil
		return MessageOutcome{Applied: true, Kind: kind}
	default:
		c.logger.Warn("message sync failed", zap.Int64("thread_id", t.ThreadID), zap.String("kind", kind.String()), zap.Error(err))
		return MessageOutcome{Kind: kind}
	}

	c.messages = messages
	c.entries = deriveEntries(t.ThreadID, messages)
	c.msgState = MessagesReady
	return MessageOutcome{Applied: true}
}

// Select makes threadID the selection. It reports whether the selection
// changed; callers then fetch the thread's messages.
func (c *Controller) Select(threadID int64) bool {
	if threadID == c.selected {
		return false
	}
	c.setSelection(threadID)
	c.selectedAtPass = c.passSeq
	return true
}

// Deselect clears the selection (navigating away).
func (c *Controller) Deselect() {
	if c.selected == 0 {
		return
	}
	c.clearSelection()
	c.selectedAtPass = c.passSeq
}

func (c *Controller) setSelection(threadID int64) {
	c.selected = threadID
	c.msgState = MessagesLoading
	c.messages = nil
	c.entries = nil
	if c.store != nil {
		if err := c.store.Save(threadID); err != nil {
			c.logger.Warn("persist selection", zap.Int64("thread_id", threadID), zap.Error(err))
		}
	}
}

func (c *Controller) clearSelection() {
	c.selected = 0
	c.msgState = MessagesIdle
	c.messages = nil
	c.entries = nil
	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.logger.Warn("erase selection", zap.Error(err))
		}
	}
}

func (c *Controller) finishPass(seq int, kind api.ErrorKind) {
	if seq == 0 {
		return
	}
	started, ok := c.passStarted[seq]
	if !ok {
		return
	}
	delete(c.passStarted, seq)
	c.recorder.ObservePass(c.now().Sub(started), kind)
}

func (c *Controller) findThread(id int64) *types.Thread {
	for i := range c.threads {
		if c.threads[i].ID == id {
			return &c.threads[i]
		}
	}
	return nil
}

// Thread returns the thread with id from the last applied list.
func (c *Controller) Thread(id int64) (types.Thread, bool) {
	if t := c.findThread(id); t != nil {
		return *t, true
	}
	return types.Thread{}, false
}

// Threads returns the thread list view.
func (c *Controller) Threads() ThreadListView {
	view := ThreadListView{State: c.inbox, Selected: c.selected}
	switch c.inbox {
	case InboxUnauthenticated:
		view.Notice = NoticeLogin
		return view
	case InboxUnavailable:
		view.Notice = NoticeInboxFailed
	}
	for _, t := range c.threads {
		view.Rows = append(view.Rows, threadRow(t, c.selected))
	}
	if c.inbox == InboxReady && len(view.Rows) == 0 {
		view.Notice = NoticeNoConversations
	}
	return view
}

// Header returns the peer panel for the selection.
func (c *Controller) Header() Header {
	if c.inbox == InboxUnauthenticated {
		return Header{Title: NoticeLogin, Initial: "?"}
	}
	return headerFor(c.findThread(c.selected), c.selected)
}

// Messages returns the message list view for the selection.
func (c *Controller) Messages() MessageListView {
	view := MessageListView{ThreadID: c.selected, State: c.msgState}
	if c.selected == 0 {
		view.State = MessagesIdle
		view.Notice = NoticeSelect
		return view
	}
	switch c.msgState {
	case MessagesDenied:
		view.Notice = NoticeDenied
	case MessagesReady:
		view.Entries = c.entries
		if len(c.entries) == 0 {
			view.Notice = NoticeNoMessages
		}
	}
	return view
}

// Message returns an applied message by id.
func (c *Controller) Message(id int64) (types.Message, bool) {
	for _, m := range c.messages {
		if m.ID == id {
			return m, true
		}
	}
	return types.Message{}, false
}

// Invite returns the call invite carried by messageID in the selection.
func (c *Controller) Invite(messageID int64) (callsignal.Invite, bool) {
	for _, e := range c.entries {
		if e.Message.ID == messageID && e.Invite != nil {
			return *e.Invite, true
		}
	}
	return callsignal.Invite{}, false
}

// Reauthenticate leaves the logged-out state after the viewer supplied new
// credentials, so the next pass fetches again.
func (c *Controller) Reauthenticate() {
	if c.inbox == InboxUnauthenticated {
		c.inbox = InboxLoading
	}
}
