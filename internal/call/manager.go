// Package call owns the single active call of this client and announces
// call lifecycle changes in-band through the thread's messages.
package call

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/adamavenir/auradm/internal/callsignal"
	"github.com/adamavenir/auradm/internal/types"
)

var (
	ErrNoActiveCall = errors.New("no active call")
	ErrCallEnded    = errors.New("call has ended")
)

// Target identifies a call to join.
type Target struct {
	ThreadID  int64
	Modality  callsignal.Modality
	SessionID string
}

// Session is the media collaborator that actually establishes calls.
type Session interface {
	Join(ctx context.Context, target Target) error
	Leave(ctx context.Context) error
}

// MessageSender posts marker messages to a thread.
type MessageSender interface {
	SendMessage(ctx context.Context, threadID int64, text string) (types.Message, error)
}

// Manager serializes call operations so at most one call is joined.
type Manager struct {
	session Session
	sender  MessageSender
	logger  *zap.Logger

	// op serializes call operations; mu guards active so Active never waits
	// on a request in flight.
	op     sync.Mutex
	mu     sync.Mutex
	active *Target
}

// NewManager builds a Manager.
func NewManager(session Session, sender MessageSender, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{session: session, sender: sender, logger: logger}
}

// Active returns the joined call, if any.
func (m *Manager) Active() (Target, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Target{}, false
	}
	return *m.active, true
}

// Start joins a new call in threadID and, once joined, posts the start
// marker. Any previously joined call is left first.
func (m *Manager) Start(ctx context.Context, threadID int64, modality callsignal.Modality) (Target, error) {
	m.op.Lock()
	defer m.op.Unlock()

	m.leaveLocked(ctx)
	target := Target{ThreadID: threadID, Modality: modality, SessionID: callsignal.NewSessionID()}
	if err := m.session.Join(ctx, target); err != nil {
		return Target{}, fmt.Errorf("start call: %w", err)
	}
	m.setActive(&target)

	if _, err := m.sender.SendMessage(ctx, threadID, callsignal.EncodeStart(modality, target.SessionID)); err != nil {
		return target, fmt.Errorf("announce call: %w", err)
	}
	m.logger.Info("call started",
		zap.Int64("thread_id", threadID),
		zap.String("modality", modality.String()),
		zap.String("session_id", target.SessionID))
	return target, nil
}

// Join joins the call behind a live invite. No marker is posted.
func (m *Manager) Join(ctx context.Context, invite callsignal.Invite) (Target, error) {
	if invite.Ended {
		return Target{}, ErrCallEnded
	}
	m.op.Lock()
	defer m.op.Unlock()

	target := Target{ThreadID: invite.ThreadID, Modality: invite.Modality, SessionID: invite.SessionID}
	if m.active != nil && *m.active == target && target.SessionID != "" {
		return target, nil
	}
	m.leaveLocked(ctx)
	if err := m.session.Join(ctx, target); err != nil {
		return Target{}, fmt.Errorf("join call: %w", err)
	}
	m.setActive(&target)
	m.logger.Info("call joined", zap.Int64("thread_id", target.ThreadID), zap.String("session_id", target.SessionID))
	return target, nil
}

// End leaves the active call and posts the end marker to its thread.
func (m *Manager) End(ctx context.Context) error {
	m.op.Lock()
	defer m.op.Unlock()
	if m.active == nil {
		return ErrNoActiveCall
	}
	target := *m.active
	m.leaveLocked(ctx)
	return m.announceEnd(ctx, target.ThreadID, target.SessionID)
}

// EndIn posts an end marker to threadID without a joined call, for closing
// a call that was started elsewhere (for example by another invocation of
// the CLI).
func (m *Manager) EndIn(ctx context.Context, threadID int64, sessionID string) error {
	m.op.Lock()
	defer m.op.Unlock()
	if m.active != nil && m.active.ThreadID == threadID {
		sessionID = m.active.SessionID
		m.leaveLocked(ctx)
	}
	return m.announceEnd(ctx, threadID, sessionID)
}

// HandleRemoteEnd is called when the media collaborator reports that the
// call ended on its own. The end marker goes to selectedThreadID when one
// is selected.
func (m *Manager) HandleRemoteEnd(ctx context.Context, selectedThreadID int64) error {
	m.op.Lock()
	defer m.op.Unlock()
	sessionID := ""
	if m.active != nil {
		if m.active.ThreadID == selectedThreadID {
			sessionID = m.active.SessionID
		}
		m.setActive(nil)
	}
	if selectedThreadID == 0 {
		return nil
	}
	return m.announceEnd(ctx, selectedThreadID, sessionID)
}

func (m *Manager) announceEnd(ctx context.Context, threadID int64, sessionID string) error {
	if _, err := m.sender.SendMessage(ctx, threadID, callsignal.EncodeEnd(sessionID)); err != nil {
		return fmt.Errorf("announce call end: %w", err)
	}
	m.logger.Info("call ended", zap.Int64("thread_id", threadID), zap.String("session_id", sessionID))
	return nil
}

func (m *Manager) leaveLocked(ctx context.Context) {
	if m.active == nil {
		return
	}
	if err := m.session.Leave(ctx); err != nil {
		m.logger.Warn("leave call", zap.Int64("thread_id", m.active.ThreadID), zap.Error(err))
	}
	m.setActive(nil)
}

func (m *Manager) setActive(target *Target) {
	m.mu.Lock()
	m.active = target
	m.mu.Unlock()
}
