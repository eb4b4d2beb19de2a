package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/auradm/internal/reconcile"
	"github.com/adamavenir/auradm/internal/stream"
	"github.com/adamavenir/auradm/internal/types"
)

// passTickMsg fires on the wall-clock message cadence.
type passTickMsg time.Time

type threadsMsg struct {
	seq     int
	threads []types.Thread
	err     error
}

type messagesMsg struct {
	ticket   reconcile.Ticket
	messages []types.Message
	err      error
}

type wakeMsg stream.Wake

type wakeClosedMsg struct{}

type callEndedMsg struct{}

// passTick schedules the next pass. tea.Every aligns to the clock, so a slow
// fetch never delays the following tick.
func (m *Model) passTick() tea.Cmd {
	return tea.Every(m.messagesInterval, func(t time.Time) tea.Msg {
		return passTickMsg(t)
	})
}

// startPass begins a reconciliation pass with its thread fetch. Message
// fetching follows from the thread outcome.
func (m *Model) startPass() tea.Cmd {
	if m.ctrl.Unauthenticated() {
		return nil
	}
	seq := m.ctrl.BeginPass()
	return m.fetchThreadsCmd(seq)
}

func (m *Model) fetchThreadsCmd(seq int) tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		threads, err := backend.ListThreads(ctx)
		return threadsMsg{seq: seq, threads: threads, err: err}
	}
}

// fetchMessagesCmd fetches the selected thread's messages for pass, or out
// of band when pass is zero.
func (m *Model) fetchMessagesCmd(pass int, threadID int64) tea.Cmd {
	ticket := m.ctrl.BeginMessages(pass, threadID)
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		messages, err := backend.ListMessages(ctx, ticket.ThreadID)
		return messagesMsg{ticket: ticket, messages: messages, err: err}
	}
}

func (m *Model) waitForWake() tea.Cmd {
	if m.wakes == nil {
		return nil
	}
	wakes := m.wakes
	return func() tea.Msg {
		wake, ok := <-wakes
		if !ok {
			return wakeClosedMsg{}
		}
		return wakeMsg(wake)
	}
}

// refreshViewport re-renders the message list. SetContent is only called
// when the markup changed so the scroll offset survives skipped renders.
func (m *Model) refreshViewport(scrollToBottom bool) {
	content := m.renderMessages()
	if content == m.lastContent {
		return
	}
	wasAtBottom := m.viewport.AtBottom()
	m.lastContent = content
	m.viewport.SetContent(content)
	if scrollToBottom || wasAtBottom {
		m.viewport.GotoBottom()
	}
}

func (m *Model) waitForCallEnd() tea.Cmd {
	if m.ended == nil {
		return nil
	}
	ended := m.ended
	return func() tea.Msg {
		if _, ok := <-ended; !ok {
			return nil
		}
		return callEndedMsg{}
	}
}
