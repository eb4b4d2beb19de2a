package chat

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"go.uber.org/zap"

	"github.com/adamavenir/auradm/internal/call"
	"github.com/adamavenir/auradm/internal/comments"
	"github.com/adamavenir/auradm/internal/reactions"
	"github.com/adamavenir/auradm/internal/reconcile"
	"github.com/adamavenir/auradm/internal/search"
	"github.com/adamavenir/auradm/internal/stream"
	"github.com/adamavenir/auradm/internal/types"
)

// Backend is the server surface the chat UI drives.
type Backend interface {
	reconcile.Backend
	search.Backend
	reactions.Reactor
	reactions.LikeClient
	call.MessageSender
	Authenticated() bool
	DeleteMessage(ctx context.Context, messageID int64) error
	GetLike(ctx context.Context, photoID int64) (types.LikeState, error)
	ListComments(ctx context.Context, photoID int64) ([]types.Comment, error)
	PostComment(ctx context.Context, photoID int64, text string, parentID *int64) (types.Comment, error)
	DeleteComment(ctx context.Context, commentID int64) error
}

// CommentRenderObserver counts comment panel renders and skips.
type CommentRenderObserver interface {
	ObserveCommentRender(rendered bool)
}

// Options configure chat.
type Options struct {
	Backend          Backend
	Controller       *reconcile.Controller
	Calls            *call.Manager
	Viewer           string
	MessagesInterval time.Duration
	CommentsInterval time.Duration
	SearchDelay      time.Duration
	SearchMinChars   int
	Notifier         Notifier
	Wakes            <-chan stream.Wake
	// CallEnded reports calls the media session ended on its own.
	CallEnded        <-chan struct{}
	Logger           *zap.Logger
	CommentRenders   CommentRenderObserver
	// PhotoID opens the comment panel of a photo at start.
	PhotoID    int64
	PhotoOwner string
	Now        func() time.Time
}

// Run starts the chat UI.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	fmt.Printf("\033]0;%s\007", "auradm")

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = program.Run()
	model.Close()
	return err
}

type focusArea int

const (
	focusComposer focusArea = iota
	focusSearch
	focusComments
)

// Model implements the chat UI.
type Model struct {
	ctx      context.Context
	cancel   context.CancelFunc
	backend  Backend
	ctrl     *reconcile.Controller
	calls    *call.Manager
	debounce *search.Debouncer
	finder   *search.Coordinator
	notifier Notifier
	wakes    <-chan stream.Wake
	ended    <-chan struct{}
	logger   *zap.Logger
	renders  CommentRenderObserver
	now      func() time.Time

	viewer           string
	messagesInterval time.Duration
	commentsInterval time.Duration

	viewport    viewport.Model
	// commentsView scrolls the comment tree; its offset survives polls
	// that return identical data.
	commentsView viewport.Model
	input       textarea.Model
	searchInput textinput.Model
	commentBox  textinput.Model
	zoneManager *zone.Manager
	focus       focusArea

	width  int
	height int
	status string

	// polling is false while logged out; ticks are not rescheduled.
	polling bool

	// focusedID is the message the quick-reaction bar acts on.
	focusedID   int64
	lastContent string
	unread      map[int64]int
	primed      bool

	searchResults []types.SearchUser
	searchOpen    bool
	searchNotice  string
	searchIndex   int

	panel           *comments.Panel
	commentsPolling bool
	like            *reactions.Like
}

// NewModel creates a chat model. The first pass starts from Init.
func NewModel(opts Options) (*Model, error) {
	if opts.Backend == nil {
		return nil, errors.New("chat: backend is required")
	}
	if opts.Controller == nil {
		return nil, errors.New("chat: controller is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MessagesInterval <= 0 {
		opts.MessagesInterval = time.Second
	}
	if opts.CommentsInterval <= 0 {
		opts.CommentsInterval = 3 * time.Second
	}
	if opts.SearchDelay <= 0 {
		opts.SearchDelay = search.DefaultDelay
	}
	if opts.SearchMinChars <= 0 {
		opts.SearchMinChars = search.DefaultMinChars
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	calls := opts.Calls
	if calls == nil {
		calls = call.NewManager(call.NewHeadlessSession(logger), opts.Backend, logger)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Model{
		ctx:              ctx,
		cancel:           cancel,
		backend:          opts.Backend,
		ctrl:             opts.Controller,
		calls:            calls,
		debounce:         search.NewDebouncer(opts.SearchDelay, opts.SearchMinChars),
		finder:           search.NewCoordinator(opts.Backend, opts.SearchMinChars, logger),
		notifier:         opts.Notifier,
		wakes:            opts.Wakes,
		ended:            opts.CallEnded,
		logger:           logger,
		renders:          opts.CommentRenders,
		now:              opts.Now,
		viewer:           opts.Viewer,
		messagesInterval: opts.MessagesInterval,
		commentsInterval: opts.CommentsInterval,
		viewport:         viewport.New(0, 0),
		commentsView:     viewport.New(0, 0),
		input:            newInputModel(),
		searchInput:      newSearchInput(),
		commentBox:       newCommentInput(),
		zoneManager:      zone.New(),
		unread:           make(map[int64]int),
		polling:          true,
	}
	if !opts.Backend.Authenticated() {
		m.ctrl.MarkUnauthenticated()
		m.polling = false
	}
	if opts.PhotoID != 0 {
		m.panel = comments.NewPanel(opts.PhotoID, opts.PhotoOwner)
		m.like = reactions.NewLike(types.LikeState{}, m.anonymous())
	}
	return m, nil
}

func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink, m.waitForWake(), m.waitForCallEnd()}
	if m.polling {
		cmds = append(cmds, m.startPass(), m.passTick())
	}
	if m.panel != nil {
		cmds = append(cmds, m.openPanelCmds()...)
	}
	return tea.Batch(cmds...)
}

// Close releases resources held by the model.
func (m *Model) Close() {
	m.cancel()
	if m.zoneManager != nil {
		m.zoneManager.Close()
	}
}

func (m *Model) anonymous() bool {
	return m.viewer == "" || !m.backend.Authenticated()
}
