package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/adamavenir/auradm/internal/reconcile"
)

const loadingMessages = "Loading messages…"

func (m *Model) renderMessages() string {
	view := m.ctrl.Messages()
	if len(view.Entries) == 0 {
		notice := view.Notice
		if notice == "" && view.State == reconcile.MessagesLoading {
			notice = loadingMessages
		}
		if m.ctrl.Unauthenticated() {
			notice = reconcile.NoticeLogin
		}
		return noticeStyle.Render(notice)
	}

	width := m.viewport.Width
	if width <= 0 {
		width = 60
	}
	focused := m.focusedMessageID()
	now := m.now()

	blocks := make([]string, 0, len(view.Entries))
	for _, entry := range view.Entries {
		blocks = append(blocks, m.renderEntry(entry, width, entry.Message.ID == focused, now))
	}
	return strings.Join(blocks, "\n\n")
}

func (m *Model) renderEntry(entry reconcile.MessageEntry, width int, focused bool, now time.Time) string {
	msg := entry.Message
	bubbleWidth := width * 2 / 3
	if bubbleWidth < 16 {
		bubbleWidth = width
	}

	var lines []string
	if !msg.IsMe && msg.Username != "" {
		lines = append(lines, nameStyle.Render(msg.Username))
	}

	if inv := entry.Invite; inv != nil {
		button := endedStyle.Render(inv.Label())
		if !inv.Ended {
			button = m.zoneManager.Mark(fmt.Sprintf("join-%d", msg.ID), buttonStyle.Render(inv.Label()))
		}
		lines = append(lines, cardStyle.Render("📞 "+inv.Title()+"\n"+button))
	} else {
		style := peerBubble
		if msg.IsMe {
			style = ownBubble
		}
		text := ansi.Wrap(msg.Text, bubbleWidth-2, "")
		lines = append(lines, m.zoneManager.Mark(fmt.Sprintf("msg-%d", msg.ID), style.Render(text)))
	}

	if len(entry.Badges) > 0 {
		pills := make([]string, 0, len(entry.Badges))
		for i, badge := range entry.Badges {
			style := pillStyle
			if badge.ViewerReacted {
				style = pillMineStyle
			}
			label := fmt.Sprintf("%s %d", badge.Emoji, badge.Count)
			pills = append(pills, m.zoneManager.Mark(fmt.Sprintf("badge-%d-%d", msg.ID, i), style.Render(label)))
		}
		lines = append(lines, strings.Join(pills, " "))
	}

	footer := dimStyle.Render(formatMessageTime(msg.CreatedAt, now))
	if msg.IsMe {
		footer += " " + m.zoneManager.Mark(fmt.Sprintf("delete-%d", msg.ID), errorStyle.Render("✕ delete"))
	}
	lines = append(lines, footer)

	block := lipgloss.JoinVertical(alignFor(msg.IsMe), lines...)
	if focused {
		block = lipgloss.JoinHorizontal(lipgloss.Top, accentStyle.Render("▎"), block)
	}
	if msg.IsMe {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}
	return block
}

func alignFor(own bool) lipgloss.Position {
	if own {
		return lipgloss.Right
	}
	return lipgloss.Left
}

// focusedMessageID is the message the quick-reaction bar targets: the
// explicitly focused one while it is still listed, else the newest.
func (m *Model) focusedMessageID() int64 {
	entries := m.ctrl.Messages().Entries
	if len(entries) == 0 {
		return 0
	}
	if m.focusedID != 0 {
		for _, e := range entries {
			if e.Message.ID == m.focusedID {
				return m.focusedID
			}
		}
	}
	return entries[len(entries)-1].Message.ID
}

// moveFocus steps the focused message by delta within the list.
func (m *Model) moveFocus(delta int) {
	entries := m.ctrl.Messages().Entries
	if len(entries) == 0 {
		return
	}
	current := m.focusedMessageID()
	idx := len(entries) - 1
	for i, e := range entries {
		if e.Message.ID == current {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(entries) {
		idx = len(entries) - 1
	}
	m.focusedID = entries[idx].Message.ID
	m.refreshViewport(false)
}
