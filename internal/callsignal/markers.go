// Package callsignal carries call lifecycle events in-band as ordinary
// direct messages and derives call-invite state back out of a thread's
// message list.
package callsignal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Reserved marker texts. Both end markers are honored when decoding; only
// MarkerEnd is written.
const (
	MarkerVideoStart = "📞 Started a video call"
	MarkerVoiceStart = "📞 Started a voice call"
	MarkerEndLegacy  = "🎥 Video call ended"
	MarkerEnd        = "🚫 Call ended"
)

// Modality is the media kind of a call.
type Modality int

const (
	Video Modality = iota
	Voice
)

func (m Modality) String() string {
	if m == Voice {
		return "voice"
	}
	return "video"
}

// ParseModality accepts "voice" or "video" (the default).
func ParseModality(value string) Modality {
	if strings.EqualFold(strings.TrimSpace(value), "voice") {
		return Voice
	}
	return Video
}

// Kind says whether a message text is a call signal.
type Kind int

const (
	KindNone Kind = iota
	KindStart
	KindEnd
)

// Signal is the call meaning of one message text.
type Signal struct {
	Kind      Kind
	Modality  Modality
	SessionID string
}

var sessionTag = regexp.MustCompile(`\[call:([0-9A-Fa-f-]{36})\]`)

// Parse classifies text. Markers match anywhere in the text; start markers
// win over end markers.
func Parse(text string) Signal {
	switch {
	case strings.Contains(text, MarkerVideoStart):
		return Signal{Kind: KindStart, Modality: Video, SessionID: sessionID(text)}
	case strings.Contains(text, MarkerVoiceStart):
		return Signal{Kind: KindStart, Modality: Voice, SessionID: sessionID(text)}
	case strings.Contains(text, MarkerEndLegacy), strings.Contains(text, MarkerEnd):
		return Signal{Kind: KindEnd, SessionID: sessionID(text)}
	}
	return Signal{}
}

// IsEnd reports whether text carries either end marker.
func IsEnd(text string) bool {
	return Parse(text).Kind == KindEnd
}

func sessionID(text string) string {
	match := sessionTag.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	id, err := uuid.Parse(match[1])
	if err != nil {
		return ""
	}
	return id.String()
}

// NewSessionID returns a fresh call session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

// EncodeStart returns the message text announcing a new call. An empty
// sessionID produces the bare marker.
func EncodeStart(modality Modality, sessionID string) string {
	marker := MarkerVideoStart
	if modality == Voice {
		marker = MarkerVoiceStart
	}
	return withSession(marker, sessionID)
}

// EncodeEnd returns the message text announcing the end of a call.
func EncodeEnd(sessionID string) string {
	return withSession(MarkerEnd, sessionID)
}

func withSession(marker, sessionID string) string {
	if sessionID == "" {
		return marker
	}
	return fmt.Sprintf("%s [call:%s]", marker, sessionID)
}
