package chat

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/auradm/internal/reactions"
)

func (m *Model) handleMouseMsg(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action == tea.MouseActionMotion {
		m.ctrl.SetHovering(m.overQuickBar(msg))
		return m, nil
	}
	if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
		if handled, cmd := m.handleMouseClick(msg); handled {
			return m, cmd
		}
		return m, nil
	}
	if msg.Button == tea.MouseButtonWheelUp || msg.Button == tea.MouseButtonWheelDown {
		var cmd tea.Cmd
		if m.overCommentsPanel(msg) {
			m.commentsView, cmd = m.commentsView.Update(msg)
			return m, cmd
		}
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// overCommentsPanel reports whether the pointer is over the right-hand
// comments column.
func (m *Model) overCommentsPanel(msg tea.MouseMsg) bool {
	cw := m.commentsWidth()
	return cw > 0 && msg.X >= m.width-cw
}

// overQuickBar reports whether the pointer rests on a quick-reaction
// button. Message refreshes are held back while it does so the bar does
// not shift under the cursor.
func (m *Model) overQuickBar(msg tea.MouseMsg) bool {
	for i := range reactions.QuickEmojis {
		if m.zoneManager.Get(fmt.Sprintf("quick-%d", i)).InBounds(msg) {
			return true
		}
	}
	return false
}
