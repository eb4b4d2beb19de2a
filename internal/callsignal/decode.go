package callsignal

import "github.com/adamavenir/auradm/internal/types"

// Invite is the call-invite card derived from a start marker.
type Invite struct {
	MessageID int64
	ThreadID  int64
	Modality  Modality
	SessionID string
	Ended     bool
}

// Label is the card's action text.
func (i Invite) Label() string {
	switch {
	case i.Ended:
		return "Call Ended"
	case i.Modality == Voice:
		return "Join Voice Call"
	default:
		return "Join Video Call"
	}
}

// Title is the card's heading.
func (i Invite) Title() string {
	if i.Modality == Voice {
		return "Voice Call"
	}
	return "Video Call"
}

// Entry is one renderable message. Invite is set for start markers.
type Entry struct {
	Message types.Message
	Invite  *Invite
}

// View is the decoded, renderable message list of a thread.
type View struct {
	ThreadID int64
	Entries  []Entry
}

// Live returns the invites that are still joinable, oldest first.
func (v View) Live() []Invite {
	var live []Invite
	for _, entry := range v.Entries {
		if entry.Invite != nil && !entry.Invite.Ended {
			live = append(live, *entry.Invite)
		}
	}
	return live
}

// Invite returns the invite carried by messageID.
func (v View) Invite(messageID int64) (Invite, bool) {
	for _, entry := range v.Entries {
		if entry.Message.ID == messageID && entry.Invite != nil {
			return *entry.Invite, true
		}
	}
	return Invite{}, false
}

type pendingStart struct {
	messageID int64
	sessionID string
}

// Decode pairs end markers with start markers over messages (oldest first)
// and drops the end markers from the result.
//
// An end carrying a session id closes the pending start with the same id;
// if none is pending it closes the most recent untagged start, and is
// otherwise ignored. An untagged end closes the most recent pending start
// (LIFO).
func Decode(threadID int64, messages []types.Message) View {
	var pending []pendingStart
	ended := make(map[int64]bool)
	signals := make([]Signal, len(messages))

	for i, msg := range messages {
		sig := Parse(msg.Text)
		signals[i] = sig
		switch sig.Kind {
		case KindStart:
			pending = append(pending, pendingStart{messageID: msg.ID, sessionID: sig.SessionID})
		case KindEnd:
			idx := matchEnd(pending, sig.SessionID)
			if idx < 0 {
				continue
			}
			ended[pending[idx].messageID] = true
			pending = append(pending[:idx], pending[idx+1:]...)
		}
	}

	view := View{ThreadID: threadID, Entries: make([]Entry, 0, len(messages))}
	for i, msg := range messages {
		sig := signals[i]
		switch sig.Kind {
		case KindEnd:
			continue
		case KindStart:
			view.Entries = append(view.Entries, Entry{
				Message: msg,
				Invite: &Invite{
					MessageID: msg.ID,
					ThreadID:  threadID,
					Modality:  sig.Modality,
					SessionID: sig.SessionID,
					Ended:     ended[msg.ID],
				},
			})
		default:
			view.Entries = append(view.Entries, Entry{Message: msg})
		}
	}
	return view
}

func matchEnd(pending []pendingStart, sessionID string) int {
	if sessionID == "" {
		return len(pending) - 1
	}
	for i := len(pending) - 1; i >= 0; i-- {
		if pending[i].sessionID == sessionID {
			return i
		}
	}
	for i := len(pending) - 1; i >= 0; i-- {
		if pending[i].sessionID == "" {
			return i
		}
	}
	return -1
}
