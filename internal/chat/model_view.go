package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/adamavenir/auradm/internal/reactions"
	"github.com/adamavenir/auradm/internal/reconcile"
)

func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	main := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderQuickBar(),
		m.zoneManager.Mark("composer", m.input.View()),
		m.renderStatusLine(),
	)
	main = lipgloss.NewStyle().Width(m.mainWidth()).PaddingLeft(1).Render(main)

	panels := []string{m.renderSidebar(), main}
	if m.panel != nil && m.panel.IsOpen() {
		panels = append(panels, m.renderCommentsPanel())
	}
	return m.zoneManager.Scan(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
}

func (m *Model) renderHeader() string {
	header := m.ctrl.Header()
	width := m.mainWidth() - 1
	if header.ThreadID == 0 {
		title := dimStyle.Render(reconcile.NoticeSelect)
		if m.ctrl.Unauthenticated() {
			title = noticeStyle.Render(reconcile.NoticeLogin)
		}
		return lipgloss.NewStyle().Width(width).Height(headerHeight).Render(title)
	}

	dot := dimStyle.Render("○")
	if header.Online {
		dot = onlineStyle.Render("●")
	}
	title := dot + " " + nameStyle.Render(header.Title)
	if header.Username != "" {
		title += " " + dimStyle.Render("@"+header.Username)
	}
	status := dimStyle.Render(header.Status)

	var buttons []string
	if header.ShowCalls {
		if active, ok := m.calls.Active(); ok {
			buttons = append(buttons,
				accentStyle.Render("● "+active.Modality.String()),
				m.zoneManager.Mark("call-end", errorStyle.Render("[end]")))
		} else {
			buttons = append(buttons,
				m.zoneManager.Mark("call-voice", buttonStyle.Render("voice")),
				m.zoneManager.Mark("call-video", buttonStyle.Render("video")))
		}
	}
	right := strings.Join(buttons, " ")
	gap := width - lipgloss.Width(title) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + right + "\n" + status
}

// renderQuickBar shows the one-click reactions for the focused message.
func (m *Model) renderQuickBar() string {
	if m.focusedMessageID() == 0 {
		return ""
	}
	buttons := make([]string, 0, len(reactions.QuickEmojis))
	for i, emoji := range reactions.QuickEmojis {
		buttons = append(buttons, m.zoneManager.Mark(fmt.Sprintf("quick-%d", i), emoji))
	}
	return dimStyle.Render("react ") + strings.Join(buttons, " ")
}

func (m *Model) renderStatusLine() string {
	text := m.status
	if text == "" {
		text = "enter send · ctrl+j newline · ctrl+f search · alt+1-6 react · /help"
	}
	return lipgloss.NewStyle().Foreground(statusColor).Render(truncateLine(text, m.mainWidth()-2))
}
