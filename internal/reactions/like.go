package reactions

import (
	"context"
	"errors"
	"sync"

	"github.com/adamavenir/auradm/internal/types"
)

// ErrAnonymous is returned when an anonymous viewer tries to like.
var ErrAnonymous = errors.New("login required to like")

// ErrPending is returned when a toggle starts before the previous one
// completed.
var ErrPending = errors.New("like toggle already in flight")

// Pending is an in-flight optimistic like toggle.
type Pending struct {
	Token    int
	Snapshot types.LikeState
}

// Like holds the displayed like state of one photo and applies toggles
// optimistically.
type Like struct {
	mu        sync.Mutex
	state     types.LikeState
	anonymous bool
	token     int
	pending   bool
}

// NewLike starts from the server's state.
func NewLike(initial types.LikeState, anonymous bool) *Like {
	if anonymous {
		initial.Liked = false
	}
	return &Like{state: initial, anonymous: anonymous}
}

// State returns what should be displayed.
func (l *Like) State() types.LikeState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Pending reports whether a toggle is waiting for its completion.
func (l *Like) Pending() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Refresh replaces the state from a fresh fetch unless a toggle is in flight.
func (l *Like) Refresh(state types.LikeState) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending {
		return
	}
	if l.anonymous {
		state.Liked = false
	}
	l.state = state
}

// Begin flips the displayed state immediately and returns the handle the
// request's completion must be resolved with. Only one toggle may be in
// flight, so the snapshot is always the last state the server confirmed.
func (l *Like) Begin() (Pending, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.anonymous {
		return Pending{}, ErrAnonymous
	}
	if l.pending {
		return Pending{}, ErrPending
	}
	snapshot := l.state
	l.state.Liked = !l.state.Liked
	if l.state.Liked {
		l.state.Count++
	} else if l.state.Count > 0 {
		l.state.Count--
	}
	l.token++
	l.pending = true
	return Pending{Token: l.token, Snapshot: snapshot}, nil
}

// Resolve applies a toggle's outcome. Success adopts the server's state;
// failure restores the pre-toggle snapshot. Completions that do not match
// the toggle in flight are ignored. It reports whether the state changed.
func (l *Like) Resolve(p Pending, server types.LikeState, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.pending || p.Token != l.token {
		return false
	}
	l.pending = false
	if err != nil {
		l.state = p.Snapshot
		return true
	}
	l.state = server
	return true
}

// LikeClient issues the toggle request.
type LikeClient interface {
	ToggleLike(ctx context.Context, photoID int64) (types.LikeState, error)
}

// ToggleLike runs one optimistic toggle to completion.
func ToggleLike(ctx context.Context, client LikeClient, like *Like, photoID int64) (types.LikeState, error) {
	pending, err := like.Begin()
	if err != nil {
		return like.State(), err
	}
	server, err := client.ToggleLike(ctx, photoID)
	like.Resolve(pending, server, err)
	return like.State(), err
}
