package call

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// HeadlessSession stands in for a media stack on terminals: it records the
// joined target and logs transitions.
type HeadlessSession struct {
	logger *zap.Logger

	mu     sync.Mutex
	joined *Target
}

// NewHeadlessSession returns a session that only tracks state.
func NewHeadlessSession(logger *zap.Logger) *HeadlessSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeadlessSession{logger: logger}
}

func (s *HeadlessSession) Join(_ context.Context, target Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joined = &target
	s.logger.Debug("media join", zap.Int64("thread_id", target.ThreadID), zap.String("modality", target.Modality.String()))
	return nil
}

func (s *HeadlessSession) Leave(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joined != nil {
		s.logger.Debug("media leave", zap.Int64("thread_id", s.joined.ThreadID))
	}
	s.joined = nil
	return nil
}

// Joined returns the currently joined target.
func (s *HeadlessSession) Joined() (Target, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.joined == nil {
		return Target{}, false
	}
	return *s.joined, true
}
