package callsignal

import (
	"testing"

	"github.com/adamavenir/auradm/internal/types"
)

func msgs(texts ...string) []types.Message {
	out := make([]types.Message, len(texts))
	for i, text := range texts {
		out[i] = types.Message{ID: int64(i + 1), Text: text}
	}
	return out
}

func inviteStates(view View) map[int64]bool {
	states := make(map[int64]bool)
	for _, entry := range view.Entries {
		if entry.Invite != nil {
			states[entry.Message.ID] = entry.Invite.Ended
		}
	}
	return states
}

func TestDecodeLIFOPairing(t *testing.T) {
	cases := []struct {
		name  string
		texts []string
		ended map[int64]bool
	}{
		{
			name:  "end closes most recent start",
			texts: []string{MarkerVideoStart, MarkerVoiceStart, MarkerEnd},
			ended: map[int64]bool{1: false, 2: true},
		},
		{
			name:  "end between starts",
			texts: []string{MarkerVideoStart, MarkerEnd, MarkerVoiceStart},
			ended: map[int64]bool{1: true, 3: false},
		},
		{
			name:  "legacy end marker",
			texts: []string{MarkerVideoStart, MarkerEndLegacy},
			ended: map[int64]bool{1: true},
		},
		{
			name:  "end without pending start",
			texts: []string{MarkerEnd, MarkerVoiceStart},
			ended: map[int64]bool{2: false},
		},
		{
			name:  "two ends close both",
			texts: []string{MarkerVideoStart, MarkerVoiceStart, MarkerEnd, MarkerEndLegacy},
			ended: map[int64]bool{1: true, 2: true},
		},
	}
	for _, tc := range cases {
		got := inviteStates(Decode(9, msgs(tc.texts...)))
		if len(got) != len(tc.ended) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.ended)
		}
		for id, want := range tc.ended {
			if ended, ok := got[id]; !ok || ended != want {
				t.Fatalf("%s: message %d ended=%v want %v", tc.name, id, ended, want)
			}
		}
	}
}

func TestDecodeStripsEndMarkers(t *testing.T) {
	view := Decode(3, msgs("hi", MarkerVideoStart, "🚫 Call ended", "🎥 Video call ended", "bye"))
	var texts []string
	for _, entry := range view.Entries {
		texts = append(texts, entry.Message.Text)
	}
	want := []string{"hi", MarkerVideoStart, "bye"}
	if len(texts) != len(want) {
		t.Fatalf("entries: got %q want %q", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Fatalf("entry %d: got %q want %q", i, texts[i], want[i])
		}
	}
}

func TestDecodeModalityAndLabels(t *testing.T) {
	view := Decode(5, msgs(MarkerVoiceStart, MarkerVideoStart))
	voice, ok := view.Invite(1)
	if !ok || voice.Modality != Voice || voice.Label() != "Join Voice Call" || voice.ThreadID != 5 {
		t.Fatalf("unexpected voice invite: %+v", voice)
	}
	video, ok := view.Invite(2)
	if !ok || video.Modality != Video || video.Label() != "Join Video Call" {
		t.Fatalf("unexpected video invite: %+v", video)
	}
	if live := view.Live(); len(live) != 2 {
		t.Fatalf("live invites: got %d want 2", len(live))
	}
}

func TestDecodePairsBySessionID(t *testing.T) {
	a, b := NewSessionID(), NewSessionID()
	// Ending the older call must not close the newer one.
	view := Decode(1, msgs(EncodeStart(Video, a), EncodeStart(Voice, b), EncodeEnd(a)))
	got := inviteStates(view)
	if !got[1] || got[2] {
		t.Fatalf("session pairing: got %v want 1 ended, 2 live", got)
	}
	if inv, _ := view.Invite(2); inv.SessionID != b {
		t.Fatalf("session id: got %q want %q", inv.SessionID, b)
	}
}

func TestDecodeTaggedEndFallsBackToUntaggedStart(t *testing.T) {
	view := Decode(1, msgs(MarkerVideoStart, EncodeEnd(NewSessionID())))
	if got := inviteStates(view); !got[1] {
		t.Fatalf("expected untagged start to be closed, got %v", got)
	}

	view = Decode(1, msgs(EncodeStart(Video, NewSessionID()), EncodeEnd(NewSessionID())))
	if got := inviteStates(view); got[1] {
		t.Fatalf("expected tagged start with different id to stay live, got %v", got)
	}
}

func TestParse(t *testing.T) {
	id := NewSessionID()
	cases := []struct {
		text string
		want Signal
	}{
		{text: "hello", want: Signal{}},
		{text: MarkerVideoStart, want: Signal{Kind: KindStart, Modality: Video}},
		{text: "fwd: " + MarkerVoiceStart, want: Signal{Kind: KindStart, Modality: Voice}},
		{text: EncodeStart(Voice, id), want: Signal{Kind: KindStart, Modality: Voice, SessionID: id}},
		{text: EncodeEnd(id), want: Signal{Kind: KindEnd, SessionID: id}},
		{text: MarkerEnd + " [call:not-a-uuid-at-all-nope-nope-nope-xx]", want: Signal{Kind: KindEnd}},
	}
	for _, tc := range cases {
		if got := Parse(tc.text); got != tc.want {
			t.Fatalf("%q: got %+v want %+v", tc.text, got, tc.want)
		}
	}
}
