package chat

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/auradm/internal/reactions"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c":
		if m.focus == focusComposer && m.input.Value() != "" {
			m.input.Reset()
			m.resize()
			return m, nil
		}
		return m, tea.Quit
	case "ctrl+f":
		m.focusSearch()
		return m, nil
	case "ctrl+up":
		return m, m.moveSelection(-1)
	case "ctrl+down":
		return m, m.moveSelection(1)
	case "ctrl+p":
		m.moveFocus(-1)
		return m, nil
	case "ctrl+n":
		m.moveFocus(1)
		return m, nil
	case "ctrl+y":
		m.copyFocused()
		return m, nil
	case "ctrl+r":
		return m, m.reauthenticate()
	case "ctrl+t":
		if m.panel != nil && m.panel.IsOpen() {
			m.setFocus(focusComments)
		}
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	if strings.HasPrefix(key, "alt+") {
		if idx, ok := quickIndex(strings.TrimPrefix(key, "alt+")); ok {
			return m, m.toggleReaction(m.focusedMessageID(), reactions.QuickEmojis[idx])
		}
	}

	switch m.focus {
	case focusSearch:
		return m.handleSearchKey(msg)
	case focusComments:
		if m.panel == nil || !m.panel.IsOpen() {
			m.setFocus(focusComposer)
			return m, nil
		}
		return m.handleCommentKey(msg)
	}
	return m.handleComposerKey(msg)
}

func (m *Model) handleComposerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.submitComposer()
	case "ctrl+j":
		m.input.InsertString("\n")
		m.resize()
		return m, nil
	case "esc":
		m.focusedID = 0
		m.refreshViewport(false)
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.resize()
	return m, cmd
}

// quickIndex maps "1".."6" to a quick-reaction slot.
func quickIndex(digit string) (int, bool) {
	if len(digit) != 1 || digit[0] < '1' {
		return 0, false
	}
	idx := int(digit[0] - '1')
	if idx >= len(reactions.QuickEmojis) {
		return 0, false
	}
	return idx, true
}
