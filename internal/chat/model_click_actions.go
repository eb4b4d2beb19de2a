package chat

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/call"
	"github.com/adamavenir/auradm/internal/callsignal"
	"github.com/adamavenir/auradm/internal/reactions"
	"github.com/adamavenir/auradm/internal/reconcile"
)

type actionKind string

const (
	actionSend   actionKind = "send"
	actionDelete actionKind = "delete"
	actionReact  actionKind = "react"
	actionStart  actionKind = "start call"
	actionJoin   actionKind = "join call"
	actionEnd    actionKind = "end call"
)

// actionMsg is the completion of a user action. Successful actions force an
// out-of-band pass instead of patching local state.
type actionMsg struct {
	kind    actionKind
	info    string
	draft   string
	err     error
	refresh bool
}

func (m *Model) handleActionMsg(msg actionMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.Classify(msg.err) == api.KindAuth {
			m.stopPolling()
			return m, nil
		}
		if msg.draft != "" && m.input.Value() == "" {
			m.input.SetValue(msg.draft)
		}
		return m, m.toast(actionFailure(msg))
	}
	var cmds []tea.Cmd
	if msg.info != "" {
		cmds = append(cmds, m.toast(msg.info))
	}
	if msg.refresh {
		cmds = append(cmds, m.startPass())
	}
	return m, tea.Batch(cmds...)
}

func actionFailure(msg actionMsg) string {
	switch msg.kind {
	case actionJoin:
		return fmt.Sprintf("Could not join call: %s", api.Message(msg.err))
	case actionEnd:
		if errors.Is(msg.err, call.ErrNoActiveCall) {
			return "No active call."
		}
	}
	return fmt.Sprintf("Could not %s: %s", msg.kind, api.Message(msg.err))
}

// sendMessage posts text to the selected thread. Blank text is rejected
// locally without a request.
func (m *Model) sendMessage(text string) tea.Cmd {
	threadID := m.ctrl.Selected()
	if threadID == 0 || !m.ctrl.Header().ComposerEnabled {
		m.status = reconcile.NoticeSelect
		return nil
	}
	if !hasText(text) {
		m.status = "Message is empty."
		return nil
	}
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		_, err := backend.SendMessage(ctx, threadID, text)
		return actionMsg{kind: actionSend, draft: text, err: err, refresh: true}
	}
}

func (m *Model) deleteMessage(messageID int64) tea.Cmd {
	msg, ok := m.ctrl.Message(messageID)
	if !ok || !msg.IsMe {
		return nil
	}
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		err := backend.DeleteMessage(ctx, messageID)
		return actionMsg{kind: actionDelete, info: "Message deleted", err: err, refresh: true}
	}
}

// toggleReaction adds or removes the viewer's emoji on a message and then
// refetches; the displayed list is never patched locally.
func (m *Model) toggleReaction(messageID int64, emoji string) tea.Cmd {
	msg, ok := m.ctrl.Message(messageID)
	if !ok {
		return nil
	}
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		_, err := reactions.Toggle(ctx, backend, msg, emoji)
		return actionMsg{kind: actionReact, err: err, refresh: err == nil}
	}
}

// toggleBadge toggles the emoji of the i-th reaction pill on a message.
func (m *Model) toggleBadge(messageID int64, index int) tea.Cmd {
	for _, entry := range m.ctrl.Messages().Entries {
		if entry.Message.ID != messageID {
			continue
		}
		if index < 0 || index >= len(entry.Badges) {
			return nil
		}
		return m.toggleReaction(messageID, entry.Badges[index].Emoji)
	}
	return nil
}

func (m *Model) startCall(modality callsignal.Modality) tea.Cmd {
	threadID := m.ctrl.Selected()
	if threadID == 0 || !m.ctrl.Header().ShowCalls {
		m.status = reconcile.NoticeSelect
		return nil
	}
	ctx, calls := m.ctx, m.calls
	return func() tea.Msg {
		_, err := calls.Start(ctx, threadID, modality)
		return actionMsg{kind: actionStart, info: "Started " + modality.String() + " call", err: err, refresh: true}
	}
}

func (m *Model) joinCall(messageID int64) tea.Cmd {
	invite, ok := m.ctrl.Invite(messageID)
	if !ok {
		return nil
	}
	if invite.Ended {
		m.status = invite.Label()
		return nil
	}
	ctx, calls := m.ctx, m.calls
	return func() tea.Msg {
		target, err := calls.Join(ctx, invite)
		return actionMsg{kind: actionJoin, info: "Joined " + target.Modality.String() + " call", err: err}
	}
}

// endCall leaves the joined call, or closes the newest live invite in the
// selected thread when this client never joined it.
func (m *Model) endCall() tea.Cmd {
	ctx, calls := m.ctx, m.calls
	if _, ok := calls.Active(); ok {
		return func() tea.Msg {
			err := calls.End(ctx)
			return actionMsg{kind: actionEnd, info: "Call ended", err: err, refresh: true}
		}
	}
	threadID := m.ctrl.Selected()
	live := m.liveInvites()
	if threadID == 0 || len(live) == 0 {
		m.status = "No active call."
		return nil
	}
	sessionID := live[len(live)-1].SessionID
	return func() tea.Msg {
		err := calls.EndIn(ctx, threadID, sessionID)
		return actionMsg{kind: actionEnd, info: "Call ended", err: err, refresh: true}
	}
}

// remoteCallEnded runs when the media session reports the call ended on
// its own; the end marker goes to the selected thread.
func (m *Model) remoteCallEnded() tea.Cmd {
	ctx, calls, threadID := m.ctx, m.calls, m.ctrl.Selected()
	return func() tea.Msg {
		err := calls.HandleRemoteEnd(ctx, threadID)
		return actionMsg{kind: actionEnd, err: err, refresh: true}
	}
}

func (m *Model) liveInvites() []callsignal.Invite {
	var live []callsignal.Invite
	for _, entry := range m.ctrl.Messages().Entries {
		if entry.Invite != nil && !entry.Invite.Ended {
			live = append(live, *entry.Invite)
		}
	}
	return live
}

func (m *Model) copyFocused() {
	id := m.focusedMessageID()
	msg, ok := m.ctrl.Message(id)
	if !ok {
		return
	}
	if err := copyToClipboard(msg.Text); err != nil {
		m.status = "Copy failed: " + err.Error()
		return
	}
	m.status = "Copied message to clipboard"
}
