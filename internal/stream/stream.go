// Package stream listens on the optional server event socket and turns
// direct-message events into wake signals. A wake only forces an extra
// reconciliation pass; the polling cadence keeps running regardless.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"

	"github.com/adamavenir/auradm/internal/api"
)

const (
	defaultBaseDelay = time.Second
	defaultMaxDelay  = 30 * time.Second
	stableAfter      = time.Minute
)

// Event types that wake the reconciler.
const (
	TypeMessage  = "dm.message"
	TypeThread   = "dm.thread"
	TypeReaction = "dm.reaction"
	TypeDeleted  = "dm.message_deleted"
)

// Envelope is one frame on the socket.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Wake tells the client something changed server-side. ThreadID is zero when
// the event did not name a thread.
type Wake struct {
	Type     string
	ThreadID int64
}

type wakePayload struct {
	ThreadID int64 `json:"thread_id"`
}

// Listener holds one socket open at a time and reconnects with jittered
// exponential backoff until its context ends.
type Listener struct {
	url       string
	tokens    api.TokenSource
	logger    *zap.Logger
	baseDelay time.Duration
	maxDelay  time.Duration
}

type Option func(*Listener)

func WithLogger(logger *zap.Logger) Option {
	return func(l *Listener) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithBackoff sets the first and the largest reconnect delay.
func WithBackoff(base, max time.Duration) Option {
	return func(l *Listener) {
		if base > 0 {
			l.baseDelay = base
		}
		if max >= base && max > 0 {
			l.maxDelay = max
		}
	}
}

// New builds a listener for rawURL. http and https URLs are rewritten to
// ws and wss.
func New(rawURL string, tokens api.TokenSource, opts ...Option) (*Listener, error) {
	wsURL, err := SocketURL(rawURL)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		url:       wsURL,
		tokens:    tokens,
		logger:    zap.NewNop(),
		baseDelay: defaultBaseDelay,
		maxDelay:  defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// SocketURL converts an http(s) URL into its websocket form.
func SocketURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return "", errors.New("stream url is required")
	case strings.HasPrefix(raw, "https://"):
		return "wss://" + strings.TrimPrefix(raw, "https://"), nil
	case strings.HasPrefix(raw, "http://"):
		return "ws://" + strings.TrimPrefix(raw, "http://"), nil
	case strings.HasPrefix(raw, "ws://"), strings.HasPrefix(raw, "wss://"):
		return raw, nil
	}
	return "", fmt.Errorf("unsupported stream url %q", raw)
}

// Run delivers wakes on out until ctx is cancelled. It never returns a
// connection error; those are logged and retried.
func (l *Listener) Run(ctx context.Context, out chan<- Wake) {
	attempt := 0
	for {
		connectedAt, err := l.listen(ctx, out)
		if ctx.Err() != nil {
			return
		}
		if !connectedAt.IsZero() && time.Since(connectedAt) > stableAfter {
			attempt = 0
		}
		delay := l.delay(attempt)
		attempt++
		l.logger.Warn("stream disconnected", zap.Error(err), zap.Duration("retry_in", delay))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

func (l *Listener) delay(attempt int) time.Duration {
	jitter := rand.Float64() * float64(l.baseDelay) * 0.5
	d := float64(l.baseDelay)*math.Pow(2, float64(attempt)) + jitter
	return time.Duration(math.Min(d, float64(l.maxDelay)))
}

func (l *Listener) listen(ctx context.Context, out chan<- Wake) (time.Time, error) {
	header := http.Header{}
	if l.tokens != nil {
		if token := l.tokens.Token(); token != "" {
			header.Set("Authorization", "Bearer "+token)
		}
	}
	conn, _, err := websocket.Dial(ctx, l.url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return time.Time{}, fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.CloseNow()

	connectedAt := time.Now()
	l.logger.Info("stream connected", zap.String("url", l.url))

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				conn.Close(websocket.StatusNormalClosure, "")
			}
			return connectedAt, err
		}
		wake, ok := decode(data)
		if !ok {
			continue
		}
		select {
		case out <- wake:
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return connectedAt, ctx.Err()
		}
	}
}

func decode(data []byte) (Wake, bool) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Wake{}, false
	}
	switch env.Type {
	case TypeMessage, TypeThread, TypeReaction, TypeDeleted:
	default:
		return Wake{}, false
	}
	wake := Wake{Type: env.Type}
	if len(env.Payload) > 0 {
		var p wakePayload
		if json.Unmarshal(env.Payload, &p) == nil {
			wake.ThreadID = p.ThreadID
		}
	}
	return wake, true
}
