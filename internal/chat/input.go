package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
)

const inputMaxHeight = 4

func newInputModel() textarea.Model {
	input := textarea.New()
	input.Prompt = "▌ "
	input.Placeholder = "Message (enter to send, / for commands)"
	input.ShowLineNumbers = false
	input.CharLimit = 0
	input.SetHeight(1)
	applyInputStyles(&input, textColor, dimColor)
	input.Focus()
	return input
}

func newSearchInput() textinput.Model {
	in := textinput.New()
	in.Prompt = "⌕ "
	in.Placeholder = "Search users (ctrl+f)"
	in.CharLimit = 64
	return in
}

func newCommentInput() textinput.Model {
	in := textinput.New()
	in.Prompt = "› "
	in.Placeholder = "Add a comment"
	in.CharLimit = 500
	return in
}

func applyInputStyles(input *textarea.Model, textColor, blurColor lipgloss.Color) {
	input.FocusedStyle.Base = lipgloss.NewStyle().Foreground(textColor).Background(inputBg)
	input.FocusedStyle.Text = lipgloss.NewStyle().Foreground(textColor).Background(inputBg)
	input.FocusedStyle.Prompt = lipgloss.NewStyle().Foreground(caretColor).Background(inputBg)
	input.FocusedStyle.CursorLine = lipgloss.NewStyle().Background(inputBg)
	input.BlurredStyle.Base = lipgloss.NewStyle().Foreground(blurColor).Background(inputBg)
	input.BlurredStyle.Text = lipgloss.NewStyle().Foreground(blurColor).Background(inputBg)
	input.BlurredStyle.Prompt = lipgloss.NewStyle().Foreground(caretColor).Background(inputBg)
	input.BlurredStyle.CursorLine = lipgloss.NewStyle().Background(inputBg)
}

// setFocus moves keyboard focus between the composer, the search box and
// the comment box.
func (m *Model) setFocus(area focusArea) {
	m.focus = area
	m.input.Blur()
	m.searchInput.Blur()
	m.commentBox.Blur()
	switch area {
	case focusSearch:
		m.searchInput.Focus()
	case focusComments:
		m.commentBox.Focus()
	default:
		m.input.Focus()
	}
}

func normalizeNewlines(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	return strings.ReplaceAll(value, "\r", "\n")
}
