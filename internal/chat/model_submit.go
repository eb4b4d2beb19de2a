package chat

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adamavenir/auradm/internal/callsignal"
)

const helpText = "/video /voice /end /join [id] /rm /react <emoji> /copy /photo <id> [owner] /close /like /reply <id> /delcomment <id> /search <q> /open <user> /hangup /login"

// submitComposer sends the composer text, or runs it as a slash command.
func (m *Model) submitComposer() tea.Cmd {
	value := normalizeNewlines(m.input.Value())
	if strings.HasPrefix(strings.TrimSpace(value), "/") {
		m.input.Reset()
		m.resize()
		return m.runCommand(strings.TrimSpace(value))
	}
	cmd := m.sendMessage(value)
	if cmd != nil {
		m.input.Reset()
		m.resize()
	}
	return cmd
}

// hasText reports whether text has anything besides whitespace.
func hasText(text string) bool {
	return strings.TrimSpace(text) != ""
}

func (m *Model) runCommand(input string) tea.Cmd {
	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]
	switch name {
	case "/video":
		return m.startCall(callsignal.Video)
	case "/voice":
		return m.startCall(callsignal.Voice)
	case "/end":
		return m.endCall()
	case "/hangup":
		return m.remoteCallEnded()
	case "/join":
		id := m.newestLiveInvite()
		if len(args) > 0 {
			parsed, ok := m.parseID(name, args[0])
			if !ok {
				return nil
			}
			id = parsed
		}
		if id == 0 {
			m.status = "No call to join."
			return nil
		}
		return m.joinCall(id)
	case "/rm":
		return m.deleteMessage(m.focusedMessageID())
	case "/react":
		if len(args) == 0 {
			m.status = "Usage: /react <emoji>"
			return nil
		}
		return m.toggleReaction(m.focusedMessageID(), args[0])
	case "/copy":
		m.copyFocused()
		return nil
	case "/photo":
		if len(args) == 0 {
			m.status = "Usage: /photo <id> [owner]"
			return nil
		}
		id, ok := m.parseID(name, args[0])
		if !ok {
			return nil
		}
		owner := ""
		if len(args) > 1 {
			owner = strings.TrimPrefix(args[1], "@")
		}
		return m.openPanel(id, owner)
	case "/close":
		m.closePanel()
		return nil
	case "/like":
		return m.toggleLike()
	case "/reply":
		if len(args) == 0 {
			m.status = "Usage: /reply <comment-id>"
			return nil
		}
		if id, ok := m.parseID(name, args[0]); ok {
			m.startReply(id)
		}
		return nil
	case "/delcomment":
		if len(args) == 0 {
			m.status = "Usage: /delcomment <comment-id>"
			return nil
		}
		if id, ok := m.parseID(name, args[0]); ok {
			return m.deleteComment(id)
		}
		return nil
	case "/search":
		m.focusSearch()
		query := strings.Join(args, " ")
		m.searchInput.SetValue(query)
		return m.queueSearch(query)
	case "/open":
		if len(args) == 0 {
			m.status = "Usage: /open <username>"
			return nil
		}
		return m.openConversation(args[0])
	case "/login":
		return m.reauthenticate()
	case "/help":
		m.status = helpText
		return nil
	}
	m.status = fmt.Sprintf("Unknown command %s. Try /help.", name)
	return nil
}

func (m *Model) parseID(command, raw string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(raw, "#"), 10, 64)
	if err != nil || id <= 0 {
		m.status = fmt.Sprintf("%s: invalid id %q", command, raw)
		return 0, false
	}
	return id, true
}

func (m *Model) newestLiveInvite() int64 {
	live := m.liveInvites()
	if len(live) == 0 {
		return 0
	}
	return live[len(live)-1].MessageID
}
