package chat

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamavenir/auradm/internal/reconcile"
)

func (m *Model) renderSidebar() string {
	width := m.sidebarWidth()
	inner := width - 2

	sections := []string{m.zoneManager.Mark("search-box", m.searchInput.View())}
	if results := m.renderSearchResults(inner); results != "" {
		sections = append(sections, results)
	}
	sections = append(sections, "", m.renderThreadList(inner))

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	style := panelStyle.Width(width - 1)
	if m.height > 0 {
		style = style.Height(m.height)
	}
	return style.Render(content)
}

func (m *Model) renderThreadList(width int) string {
	view := m.ctrl.Threads()
	var rows []string
	if view.Notice != "" {
		rows = append(rows, noticeStyle.Render(wrapNotice(view.Notice, width)))
	}
	now := m.now()
	for _, row := range view.Rows {
		rows = append(rows, m.renderThreadRow(row, width, now))
	}
	if len(rows) == 0 && view.State == reconcile.InboxLoading {
		rows = append(rows, noticeStyle.Render("Loading…"))
	}
	return strings.Join(rows, "\n")
}

func (m *Model) renderThreadRow(row reconcile.ThreadRow, width int, now time.Time) string {
	dot := dimStyle.Render("○")
	if row.Online {
		dot = onlineStyle.Render("●")
	}
	when := dimStyle.Render(formatThreadTime(row.UpdatedAt, now))
	badge := ""
	if row.Unread > 0 {
		badge = " " + unreadStyle.Render(fmt.Sprintf("%d", row.Unread))
	}

	nameWidth := width - lipgloss.Width(when) - lipgloss.Width(badge) - 3
	name := nameStyle.Render(truncateLine(row.Name, nameWidth))
	top := dot + " " + name + badge
	gap := width - lipgloss.Width(top) - lipgloss.Width(when)
	if gap < 1 {
		gap = 1
	}
	top += strings.Repeat(" ", gap) + when
	preview := dimStyle.Render("  " + truncateLine(row.Preview, width-2))

	style := lipgloss.NewStyle().Width(width)
	if row.Selected {
		style = style.Background(selectedBg)
	}
	return m.zoneManager.Mark(fmt.Sprintf("thread-%d", row.ID), style.Render(top+"\n"+preview))
}

func wrapNotice(text string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(text)
}

// moveSelection selects the thread delta rows away from the current one.
func (m *Model) moveSelection(delta int) tea.Cmd {
	rows := m.ctrl.Threads().Rows
	if len(rows) == 0 {
		return nil
	}
	idx := -1
	for i, row := range rows {
		if row.Selected {
			idx = i
			break
		}
	}
	next := idx + delta
	if idx < 0 {
		next = 0
	}
	if next < 0 {
		next = 0
	}
	if next >= len(rows) {
		next = len(rows) - 1
	}
	return m.selectThread(rows[next].ID)
}

// selectThread switches the conversation. Fetches in flight for the old
// thread are discarded when they arrive.
func (m *Model) selectThread(threadID int64) tea.Cmd {
	if !m.ctrl.Select(threadID) {
		return nil
	}
	m.focusedID = 0
	m.unread[threadID] = 0
	m.refreshViewport(true)
	return m.fetchMessagesCmd(0, threadID)
}
