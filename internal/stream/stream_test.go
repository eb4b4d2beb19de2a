package stream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/adamavenir/auradm/internal/api"
)

func TestSocketURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  bool
	}{
		{in: "http://localhost:8000/ws/dm/", want: "ws://localhost:8000/ws/dm/"},
		{in: "https://aura.example/ws/dm/", want: "wss://aura.example/ws/dm/"},
		{in: "wss://aura.example/ws/", want: "wss://aura.example/ws/"},
		{in: "", err: true},
		{in: "ftp://aura.example", err: true},
	}
	for _, tc := range cases {
		got, err := SocketURL(tc.in)
		if tc.err {
			if err == nil {
				t.Fatalf("SocketURL(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SocketURL(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("SocketURL(%q): got %q want %q", tc.in, got, tc.want)
		}
	}
}

func TestDecodeFiltersEvents(t *testing.T) {
	cases := []struct {
		raw  string
		ok   bool
		want Wake
	}{
		{raw: `{"type":"dm.message","payload":{"thread_id":4}}`, ok: true, want: Wake{Type: TypeMessage, ThreadID: 4}},
		{raw: `{"type":"dm.thread"}`, ok: true, want: Wake{Type: TypeThread}},
		{raw: `{"type":"pong"}`},
		{raw: `not json`},
	}
	for _, tc := range cases {
		got, ok := decode([]byte(tc.raw))
		if ok != tc.ok {
			t.Fatalf("decode(%s): ok got %v want %v", tc.raw, ok, tc.ok)
		}
		if ok && got != tc.want {
			t.Fatalf("decode(%s): got %+v want %+v", tc.raw, got, tc.want)
		}
	}
}

func TestListenerDeliversWakesAndReconnects(t *testing.T) {
	var conns atomic.Int32
	var authOK atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer secret" {
			authOK.Store(true)
		}
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer c.CloseNow()
		n := conns.Add(1)
		ctx := r.Context()
		_ = c.Write(ctx, websocket.MessageText, []byte("garbage"))
		_ = wsjson.Write(ctx, c, Envelope{Type: "pong"})
		if n == 1 {
			_ = wsjson.Write(ctx, c, map[string]any{"type": TypeMessage, "payload": map[string]any{"thread_id": 7}})
		} else {
			_ = wsjson.Write(ctx, c, map[string]any{"type": TypeReaction, "payload": map[string]any{"thread_id": 9}})
		}
		c.Close(websocket.StatusNormalClosure, "")
	}))
	defer srv.Close()

	l, err := New(srv.URL, api.StaticToken("secret"), WithBackoff(10*time.Millisecond, 20*time.Millisecond))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := make(chan Wake, 4)
	done := make(chan struct{})
	go func() {
		l.Run(ctx, out)
		close(done)
	}()

	want := []Wake{{Type: TypeMessage, ThreadID: 7}, {Type: TypeReaction, ThreadID: 9}}
	for i, w := range want {
		select {
		case got := <-out:
			if got != w {
				t.Fatalf("wake %d: got %+v want %+v", i, got, w)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("wake %d: timed out", i)
		}
	}
	if !authOK.Load() {
		t.Fatalf("expected bearer token on the handshake")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestBackoffIsCapped(t *testing.T) {
	l, err := New("ws://localhost/ws", nil, WithBackoff(100*time.Millisecond, time.Second))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for attempt := 0; attempt < 10; attempt++ {
		d := l.delay(attempt)
		if d > time.Second {
			t.Fatalf("attempt %d: delay %v exceeds max", attempt, d)
		}
		if d < 100*time.Millisecond {
			t.Fatalf("attempt %d: delay %v below base", attempt, d)
		}
	}
}
