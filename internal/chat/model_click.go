package chat

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/auradm/internal/callsignal"
	"github.com/adamavenir/auradm/internal/comments"
	"github.com/adamavenir/auradm/internal/reactions"
	"github.com/adamavenir/auradm/internal/types"
)

func (m *Model) inZone(id string, msg tea.MouseMsg) bool {
	return m.zoneManager.Get(id).InBounds(msg)
}

func (m *Model) handleMouseClick(msg tea.MouseMsg) (bool, tea.Cmd) {
	if m.inZone("composer", msg) {
		m.setFocus(focusComposer)
		return true, nil
	}
	if m.inZone("search-box", msg) {
		m.focusSearch()
		return true, nil
	}
	if m.inZone("call-video", msg) {
		return true, m.startCall(callsignal.Video)
	}
	if m.inZone("call-voice", msg) {
		return true, m.startCall(callsignal.Voice)
	}
	if m.inZone("call-end", msg) {
		return true, m.endCall()
	}
	for i := range reactions.QuickEmojis {
		if m.inZone(fmt.Sprintf("quick-%d", i), msg) {
			return true, m.toggleReaction(m.focusedMessageID(), reactions.QuickEmojis[i])
		}
	}
	if handled, cmd := m.handleCommentsClick(msg); handled {
		return true, cmd
	}

	for i := range m.searchResults {
		if m.inZone(fmt.Sprintf("search-%d", i), msg) {
			return true, m.openConversation(m.searchResults[i].Username)
		}
	}
	for _, row := range m.ctrl.Threads().Rows {
		if m.inZone(fmt.Sprintf("thread-%d", row.ID), msg) {
			m.setFocus(focusComposer)
			return true, m.selectThread(row.ID)
		}
	}

	for _, entry := range m.ctrl.Messages().Entries {
		id := entry.Message.ID
		if entry.Invite != nil && m.inZone(fmt.Sprintf("join-%d", id), msg) {
			return true, m.joinCall(id)
		}
		for i := range entry.Badges {
			if m.inZone(fmt.Sprintf("badge-%d-%d", id, i), msg) {
				return true, m.toggleBadge(id, i)
			}
		}
		if entry.Message.IsMe && m.inZone(fmt.Sprintf("delete-%d", id), msg) {
			return true, m.deleteMessage(id)
		}
		if m.inZone(fmt.Sprintf("msg-%d", id), msg) {
			m.focusedID = id
			m.refreshViewport(false)
			return true, nil
		}
	}
	return false, nil
}

func (m *Model) handleCommentsClick(msg tea.MouseMsg) (bool, tea.Cmd) {
	if m.panel == nil || !m.panel.IsOpen() {
		return false, nil
	}
	if m.inZone("like", msg) {
		return true, m.toggleLike()
	}
	if m.inZone("comments-close", msg) {
		m.closePanel()
		return true, nil
	}
	var (
		handled bool
		cmd     tea.Cmd
	)
	comments.Walk(m.panel.Comments(), func(c types.Comment, _ int) {
		if handled {
			return
		}
		switch {
		case m.inZone(fmt.Sprintf("comment-reply-%d", c.ID), msg):
			m.startReply(c.ID)
			handled = true
		case m.inZone(fmt.Sprintf("comment-delete-%d", c.ID), msg):
			cmd = m.deleteComment(c.ID)
			handled = true
		}
	})
	if !handled && m.inZone("comment-box", msg) {
		m.setFocus(focusComments)
		return true, nil
	}
	return handled, cmd
}
