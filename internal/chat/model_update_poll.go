package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/reconcile"
)

func (m *Model) handlePassTick() (tea.Model, tea.Cmd) {
	if m.ctrl.Unauthenticated() {
		m.stopPolling()
		return m, nil
	}
	return m, tea.Batch(m.passTick(), m.startPass())
}

func (m *Model) handleThreadsMsg(msg threadsMsg) (tea.Model, tea.Cmd) {
	out := m.ctrl.ApplyThreads(msg.seq, msg.threads, msg.err)
	switch out.Kind {
	case api.KindNone:
	case api.KindAuth:
		m.stopPolling()
		return m, nil
	default:
		m.status = reconcile.NoticeInboxFailed + " " + api.Message(msg.err)
	}

	var cmds []tea.Cmd
	if out.Applied {
		if m.statusFromInbox() {
			m.status = ""
		}
		cmds = append(cmds, m.notifyUnread(msg.threads))
	}
	if out.Cleared || out.AutoSelected {
		m.focusedID = 0
		m.refreshViewport(true)
	}
	if out.FetchMessages != 0 {
		cmds = append(cmds, m.fetchMessagesCmd(msg.seq, out.FetchMessages))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleMessagesMsg(msg messagesMsg) (tea.Model, tea.Cmd) {
	out := m.ctrl.ApplyMessages(msg.ticket, msg.messages, msg.err)
	switch {
	case out.Kind == api.KindAuth && !out.Stale:
		m.stopPolling()
	case out.Applied:
		m.refreshViewport(false)
	case out.Stale || out.Suppressed:
	case msg.err != nil:
		m.status = "Could not refresh messages: " + api.Message(msg.err)
	}
	return m, nil
}

func (m *Model) handleWakeMsg(msg wakeMsg) (tea.Model, tea.Cmd) {
	m.logger.Debug("wake", zap.String("type", msg.Type), zap.Int64("thread_id", msg.ThreadID))
	return m, tea.Batch(m.startPass(), m.waitForWake())
}

// stopPolling enters the logged-out state. Ticks are not rescheduled until
// the viewer reauthenticates.
func (m *Model) stopPolling() {
	m.ctrl.MarkUnauthenticated()
	m.polling = false
	m.status = reconcile.NoticeLogin
	m.refreshViewport(true)
}

// reauthenticate restarts polling once the token source has credentials.
func (m *Model) reauthenticate() tea.Cmd {
	if !m.backend.Authenticated() {
		m.status = reconcile.NoticeLogin
		return nil
	}
	m.ctrl.Reauthenticate()
	m.status = ""
	if m.polling {
		return m.startPass()
	}
	m.polling = true
	return tea.Batch(m.startPass(), m.passTick())
}

func (m *Model) statusFromInbox() bool {
	return strings.HasPrefix(m.status, reconcile.NoticeInboxFailed)
}
