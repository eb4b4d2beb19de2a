package comments

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/adamavenir/auradm/internal/types"
)

const emptyText = "No comments yet. Be the first!"

var (
	authorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	bodyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	actionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	deleteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("167"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true)
	threadRule  = lipgloss.NewStyle().Foreground(lipgloss.Color("238")).Render("│ ")
)

// RenderOptions controls which affordances a rendering shows.
type RenderOptions struct {
	Viewer string
	Owner  string
	Width  int
	// Mark wraps an affordance so the caller can make it clickable.
	Mark func(id, label string) string
}

// Render returns the markup of a comment tree. Output depends only on its
// inputs, so equal data yields byte-identical markup.
func Render(list []types.Comment, opts RenderOptions) string {
	if len(list) == 0 {
		return emptyStyle.Render(emptyText)
	}
	mark := opts.Mark
	if mark == nil {
		mark = func(_, label string) string { return label }
	}

	var b strings.Builder
	Walk(list, func(c types.Comment, depth int) {
		indent := strings.Repeat(threadRule, depth)
		head := authorStyle.Render(c.Username) + " " + bodyStyle.Render(wrap(c.Text, opts.Width-2*depth-len(c.Username)-1))

		var actions []string
		if opts.Viewer != "" {
			actions = append(actions, mark(fmt.Sprintf("comment-reply-%d", c.ID), actionStyle.Render("reply")))
		}
		if CanDelete(opts.Viewer, opts.Owner, c.Username) {
			actions = append(actions, mark(fmt.Sprintf("comment-delete-%d", c.ID), deleteStyle.Render("delete")))
		}

		b.WriteString(indent)
		b.WriteString(head)
		b.WriteByte('\n')
		if len(actions) > 0 {
			b.WriteString(indent)
			b.WriteString(strings.Join(actions, actionStyle.Render(" · ")))
			b.WriteByte('\n')
		}
	})
	return strings.TrimRight(b.String(), "\n")
}

func wrap(text string, width int) string {
	if width < 10 {
		return text
	}
	return ansi.Wrap(text, width, "")
}
