package call

import (
	"context"
	"errors"
	"testing"

	"github.com/adamavenir/auradm/internal/callsignal"
	"github.com/adamavenir/auradm/internal/types"
)

type recordingSession struct {
	calls   []string
	joinErr error
}

func (s *recordingSession) Join(_ context.Context, target Target) error {
	s.calls = append(s.calls, "join:"+target.Modality.String())
	return s.joinErr
}

func (s *recordingSession) Leave(context.Context) error {
	s.calls = append(s.calls, "leave")
	return nil
}

type sentMessage struct {
	threadID int64
	text     string
}

type recordingSender struct {
	sent []sentMessage
	err  error
}

func (s *recordingSender) SendMessage(_ context.Context, threadID int64, text string) (types.Message, error) {
	if s.err != nil {
		return types.Message{}, s.err
	}
	s.sent = append(s.sent, sentMessage{threadID: threadID, text: text})
	return types.Message{ID: int64(len(s.sent)), Text: text}, nil
}

func TestStartJoinsBeforeAnnouncing(t *testing.T) {
	session := &recordingSession{}
	sender := &recordingSender{}
	mgr := NewManager(session, sender, nil)

	target, err := mgr.Start(context.Background(), 4, callsignal.Voice)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(session.calls) != 1 || session.calls[0] != "join:voice" {
		t.Fatalf("session calls: got %v", session.calls)
	}
	if len(sender.sent) != 1 || sender.sent[0].threadID != 4 {
		t.Fatalf("sent: got %+v", sender.sent)
	}
	sig := callsignal.Parse(sender.sent[0].text)
	if sig.Kind != callsignal.KindStart || sig.Modality != callsignal.Voice || sig.SessionID != target.SessionID {
		t.Fatalf("unexpected start marker %q", sender.sent[0].text)
	}
}

func TestStartFailureSendsNothing(t *testing.T) {
	session := &recordingSession{joinErr: errors.New("no devices")}
	sender := &recordingSender{}
	mgr := NewManager(session, sender, nil)

	if _, err := mgr.Start(context.Background(), 4, callsignal.Video); err == nil {
		t.Fatal("expected start error")
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no marker, got %+v", sender.sent)
	}
	if _, ok := mgr.Active(); ok {
		t.Fatal("expected no active call")
	}
}

func TestSingleActiveCall(t *testing.T) {
	session := &recordingSession{}
	sender := &recordingSender{}
	mgr := NewManager(session, sender, nil)
	ctx := context.Background()

	if _, err := mgr.Start(ctx, 1, callsignal.Video); err != nil {
		t.Fatalf("start first: %v", err)
	}
	invite := callsignal.Invite{MessageID: 9, ThreadID: 2, Modality: callsignal.Voice, SessionID: callsignal.NewSessionID()}
	if _, err := mgr.Join(ctx, invite); err != nil {
		t.Fatalf("join: %v", err)
	}
	want := []string{"join:video", "leave", "join:voice"}
	if len(session.calls) != len(want) {
		t.Fatalf("session calls: got %v want %v", session.calls, want)
	}
	for i := range want {
		if session.calls[i] != want[i] {
			t.Fatalf("session call %d: got %q want %q", i, session.calls[i], want[i])
		}
	}
	active, ok := mgr.Active()
	if !ok || active.ThreadID != 2 {
		t.Fatalf("active: got %+v %v", active, ok)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("joining an invite must not post a marker, sent %+v", sender.sent)
	}
}

func TestJoinEndedInvite(t *testing.T) {
	mgr := NewManager(&recordingSession{}, &recordingSender{}, nil)
	_, err := mgr.Join(context.Background(), callsignal.Invite{ThreadID: 1, Ended: true})
	if !errors.Is(err, ErrCallEnded) {
		t.Fatalf("expected ErrCallEnded, got %v", err)
	}
}

func TestEndAnnouncesWithSessionID(t *testing.T) {
	session := &recordingSession{}
	sender := &recordingSender{}
	mgr := NewManager(session, sender, nil)
	ctx := context.Background()

	if err := mgr.End(ctx); !errors.Is(err, ErrNoActiveCall) {
		t.Fatalf("expected ErrNoActiveCall, got %v", err)
	}

	target, err := mgr.Start(ctx, 3, callsignal.Video)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := mgr.End(ctx); err != nil {
		t.Fatalf("end: %v", err)
	}
	last := sender.sent[len(sender.sent)-1]
	sig := callsignal.Parse(last.text)
	if last.threadID != 3 || sig.Kind != callsignal.KindEnd || sig.SessionID != target.SessionID {
		t.Fatalf("unexpected end marker: %+v", last)
	}

	messages := make([]types.Message, len(sender.sent))
	for i, sent := range sender.sent {
		messages[i] = types.Message{ID: int64(i + 1), Text: sent.text}
	}
	if live := callsignal.Decode(3, messages).Live(); len(live) != 0 {
		t.Fatalf("expected decoded call to be ended, live=%+v", live)
	}
}

func TestHandleRemoteEnd(t *testing.T) {
	sender := &recordingSender{}
	mgr := NewManager(&recordingSession{}, sender, nil)
	ctx := context.Background()

	if _, err := mgr.Start(ctx, 5, callsignal.Voice); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := mgr.HandleRemoteEnd(ctx, 5); err != nil {
		t.Fatalf("remote end: %v", err)
	}
	if _, ok := mgr.Active(); ok {
		t.Fatal("expected call to be cleared")
	}
	if len(sender.sent) != 2 || !callsignal.IsEnd(sender.sent[1].text) {
		t.Fatalf("sent: got %+v", sender.sent)
	}

	if err := mgr.HandleRemoteEnd(ctx, 0); err != nil {
		t.Fatalf("remote end without selection: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected no marker without a selection, sent %+v", sender.sent)
	}
}
