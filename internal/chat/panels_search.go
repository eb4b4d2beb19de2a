package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/search"
	"github.com/adamavenir/auradm/internal/types"
)

const noUsersFound = "No users found"

// searchTickMsg fires when a keystroke's quiet period elapses.
type searchTickMsg struct {
	req search.Request
}

type searchResultsMsg struct {
	seq   int
	users []types.SearchUser
	err   error
}

type openedMsg struct {
	username string
	thread   types.Thread
	err      error
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeSearch()
		return m, nil
	case "enter":
		if m.searchOpen && m.searchIndex < len(m.searchResults) {
			return m, m.openConversation(m.searchResults[m.searchIndex].Username)
		}
		return m, nil
	case "up":
		if m.searchIndex > 0 {
			m.searchIndex--
		}
		return m, nil
	case "down":
		if m.searchIndex < len(m.searchResults)-1 {
			m.searchIndex++
		}
		return m, nil
	}

	before := m.searchInput.Value()
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	if m.searchInput.Value() == before {
		return m, cmd
	}
	return m, tea.Batch(cmd, m.queueSearch(m.searchInput.Value()))
}

// queueSearch restarts the debounce window for query. Queries under the
// minimum length hide the results and issue nothing.
func (m *Model) queueSearch(query string) tea.Cmd {
	req, ok := m.debounce.Input(query)
	if !ok {
		m.hideSearchResults()
		return nil
	}
	return tea.Tick(m.debounce.Delay(), func(time.Time) tea.Msg {
		return searchTickMsg{req: req}
	})
}

func (m *Model) handleSearchTick(msg searchTickMsg) (tea.Model, tea.Cmd) {
	if !m.debounce.Ready(msg.req) {
		return m, nil
	}
	ctx, finder, req := m.ctx, m.finder, msg.req
	return m, func() tea.Msg {
		users, err := finder.Search(ctx, req.Query)
		return searchResultsMsg{seq: req.Seq, users: users, err: err}
	}
}

func (m *Model) handleSearchResults(msg searchResultsMsg) (tea.Model, tea.Cmd) {
	if !m.debounce.Current(msg.seq) {
		return m, nil
	}
	if msg.err != nil {
		m.hideSearchResults()
		if errors.Is(msg.err, search.ErrQueryTooShort) {
			return m, nil
		}
		m.status = "Search failed: " + api.Message(msg.err)
		return m, nil
	}
	m.searchResults = msg.users
	m.searchIndex = 0
	m.searchOpen = true
	m.searchNotice = ""
	if len(msg.users) == 0 {
		m.searchNotice = noUsersFound
	}
	return m, nil
}

// openConversation creates or fetches the thread with username.
func (m *Model) openConversation(username string) tea.Cmd {
	username = strings.TrimPrefix(strings.TrimSpace(username), "@")
	if username == "" {
		return nil
	}
	ctx, finder := m.ctx, m.finder
	return func() tea.Msg {
		thread, err := finder.Open(ctx, username)
		return openedMsg{username: username, thread: thread, err: err}
	}
}

func (m *Model) handleOpenedMsg(msg openedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		if api.Classify(msg.err) == api.KindAuth {
			m.stopPolling()
			return m, nil
		}
		return m, m.toast("Could not start chat: " + api.Message(msg.err))
	}
	m.closeSearch()
	cmds := []tea.Cmd{m.toast(fmt.Sprintf("Chat started with @%s", msg.username))}
	if cmd := m.selectThread(msg.thread.ID); cmd != nil {
		cmds = append(cmds, cmd)
	}
	// The new thread shows up in the list on the next pass; run it now.
	cmds = append(cmds, m.startPass())
	return m, tea.Batch(cmds...)
}

func (m *Model) focusSearch() {
	m.setFocus(focusSearch)
}

func (m *Model) closeSearch() {
	m.debounce.Cancel()
	m.searchInput.Reset()
	m.hideSearchResults()
	m.setFocus(focusComposer)
}

func (m *Model) hideSearchResults() {
	m.searchResults = nil
	m.searchOpen = false
	m.searchNotice = ""
	m.searchIndex = 0
}

func (m *Model) renderSearchResults(width int) string {
	if !m.searchOpen {
		return ""
	}
	if m.searchNotice != "" {
		return noticeStyle.Render(m.searchNotice)
	}
	rows := make([]string, 0, len(m.searchResults))
	for i, user := range m.searchResults {
		label := "@" + user.Username
		if user.DisplayName != "" {
			label = user.DisplayName + " " + dimStyle.Render(label)
		}
		style := lipgloss.NewStyle().Width(width)
		if i == m.searchIndex {
			style = style.Background(selectedBg)
		}
		rows = append(rows, m.zoneManager.Mark(fmt.Sprintf("search-%d", i), style.Render(truncateLine(label, width))))
	}
	return strings.Join(rows, "\n")
}
