package reconcile

import (
	"strings"
	"time"
	"unicode"

	"github.com/adamavenir/auradm/internal/callsignal"
	"github.com/adamavenir/auradm/internal/reactions"
	"github.com/adamavenir/auradm/internal/types"
)

// InboxState is the state of the thread list.
type InboxState int

const (
	InboxLoading InboxState = iota
	InboxReady
	InboxUnavailable
	InboxUnauthenticated
)

func (s InboxState) String() string {
	switch s {
	case InboxReady:
		return "ready"
	case InboxUnavailable:
		return "unavailable"
	case InboxUnauthenticated:
		return "unauthenticated"
	default:
		return "loading"
	}
}

// MessagesState is the state of the active thread's message list.
type MessagesState int

const (
	MessagesIdle MessagesState = iota
	MessagesLoading
	MessagesReady
	MessagesDenied
)

func (s MessagesState) String() string {
	switch s {
	case MessagesLoading:
		return "loading"
	case MessagesReady:
		return "ready"
	case MessagesDenied:
		return "denied"
	default:
		return "idle"
	}
}

const (
	NoticeNoConversations = "No conversations yet. Search a user to start."
	NoticeInboxFailed     = "Unable to load inbox."
	NoticeLogin           = "Please login to use direct messages."
	NoticeSelect          = "Select a conversation"
	NoticeNoMessages      = "No messages yet. Say hi!"
	NoticeDenied          = "You are not allowed to view this chat."
	PreviewEmpty          = "No messages yet"
	UnknownUser           = "Unknown"
)

// ThreadRow is one entry of the thread list.
type ThreadRow struct {
	ID        int64
	Name      string
	Username  string
	Initial   string
	Preview   string
	UpdatedAt time.Time
	Unread    int
	Online    bool
	Selected  bool
}

// ThreadListView is the rendered thread list.
type ThreadListView struct {
	State    InboxState
	Rows     []ThreadRow
	Selected int64
	Notice   string
}

// Header is the peer panel above the message list.
type Header struct {
	ThreadID        int64
	Title           string
	Username        string
	Initial         string
	Status          string
	Online          bool
	ProfileURL      string
	ShowCalls       bool
	ComposerEnabled bool
}

// MessageEntry is one renderable message with its derived call and
// reaction state.
type MessageEntry struct {
	Message types.Message
	Invite  *callsignal.Invite
	Badges  []reactions.Badge
}

// MessageListView is the rendered message list of the selected thread.
type MessageListView struct {
	ThreadID int64
	State    MessagesState
	Entries  []MessageEntry
	Notice   string
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

func threadRow(t types.Thread, selected int64) ThreadRow {
	row := ThreadRow{
		ID:        t.ID,
		Name:      UnknownUser,
		Initial:   "?",
		Preview:   PreviewEmpty,
		UpdatedAt: t.UpdatedAt,
		Unread:    t.UnreadCount,
		Selected:  t.ID == selected,
	}
	if t.OtherUser != nil {
		row.Name = t.OtherUser.Name()
		row.Username = t.OtherUser.Username
		row.Initial = initial(row.Name)
		row.Online = t.OtherUser.IsOnline
	}
	if t.LastMessage != nil {
		row.Preview = t.LastMessage.Text
		if !t.LastMessage.CreatedAt.IsZero() {
			row.UpdatedAt = t.LastMessage.CreatedAt
		}
	}
	return row
}

func headerFor(t *types.Thread, selected int64) Header {
	if selected == 0 {
		return Header{Title: NoticeSelect, Initial: "?"}
	}
	if t == nil {
		return Header{ThreadID: selected, Title: "Loading conversation", Initial: "?", ComposerEnabled: true}
	}
	h := Header{
		ThreadID:        t.ID,
		Title:           UnknownUser,
		Initial:         "?",
		ShowCalls:       true,
		ComposerEnabled: true,
		Status:          "Last seen recently",
	}
	if u := t.OtherUser; u != nil {
		h.Title = u.Name()
		h.Username = u.Username
		h.Initial = initial(h.Title)
		h.Online = u.IsOnline
		if u.IsOnline {
			h.Status = "Active now"
		}
		h.ProfileURL = u.ProfileURL
		if h.ProfileURL == "" && u.Username != "" {
			h.ProfileURL = "/u/" + u.Username + "/"
		}
	}
	return h
}

func deriveEntries(threadID int64, messages []types.Message) []MessageEntry {
	decoded := callsignal.Decode(threadID, messages)
	entries := make([]MessageEntry, 0, len(decoded.Entries))
	for _, e := range decoded.Entries {
		entries = append(entries, MessageEntry{
			Message: e.Message,
			Invite:  e.Invite,
			Badges:  reactions.Aggregate(e.Message.Reactions),
		})
	}
	return entries
}
