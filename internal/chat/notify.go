package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gen2brain/beeep"
	"go.uber.org/zap"

	"github.com/adamavenir/auradm/internal/types"
)

// Notifier shows transient desktop toasts.
type Notifier interface {
	Notify(title, body string) error
}

// DesktopNotifier sends toasts through the OS notification service.
type DesktopNotifier struct{}

// NewDesktopNotifier registers the application name used in toasts.
func NewDesktopNotifier() DesktopNotifier {
	beeep.AppName = "auradm"
	return DesktopNotifier{}
}

func (DesktopNotifier) Notify(title, body string) error {
	return beeep.Notify(title, truncateNotification(body, 100), "")
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) error { return nil }

// toast shows text on the status line and as a desktop notification.
func (m *Model) toast(text string) tea.Cmd {
	m.status = text
	return m.notify("auradm", text)
}

func (m *Model) notify(title, body string) tea.Cmd {
	notifier, logger := m.notifier, m.logger
	return func() tea.Msg {
		if err := notifier.Notify(title, body); err != nil {
			logger.Debug("notification failed", zap.Error(err))
		}
		return nil
	}
}

// notifyUnread raises a toast for every unselected thread whose unread
// count grew since the previous applied list. The first list only primes
// the counts.
func (m *Model) notifyUnread(threads []types.Thread) tea.Cmd {
	first := !m.primed
	m.primed = true
	selected := m.ctrl.Selected()

	var cmds []tea.Cmd
	for _, t := range threads {
		prev := m.unread[t.ID]
		m.unread[t.ID] = t.UnreadCount
		if first || t.ID == selected || t.UnreadCount <= prev {
			continue
		}
		title, body := unreadNotification(t)
		cmds = append(cmds, m.notify(title, body))
	}
	return tea.Batch(cmds...)
}

func unreadNotification(t types.Thread) (string, string) {
	name := "Unknown"
	if t.OtherUser != nil {
		name = t.OtherUser.Name()
	}
	body := fmt.Sprintf("%d unread", t.UnreadCount)
	if t.LastMessage != nil && strings.TrimSpace(t.LastMessage.Text) != "" {
		body = t.LastMessage.Text
	}
	return "New message from " + name, body
}

func truncateNotification(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
