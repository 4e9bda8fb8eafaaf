package session

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/gophcam/internal/common"
	"github.com/dmitrijs2005/gophcam/internal/logging"
	"github.com/dmitrijs2005/gophcam/internal/server/device"
	"github.com/dmitrijs2005/gophcam/internal/server/models"
)

// Connector opens the device transport for a new session.
type Connector interface {
	Connect(ctx context.Context, sessionID, userID string) (device.Device, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, sessionID, userID string) (device.Device, error)

func (f ConnectorFunc) Connect(ctx context.Context, sessionID, userID string) (device.Device, error) {
	return f(ctx, sessionID, userID)
}

// NoTransport is the connector used when no device transport is configured.
type NoTransport struct{}

func (NoTransport) Connect(context.Context, string, string) (device.Device, error) {
	return nil, common.ErrNoTransport
}

// Manager owns every live session, keyed by session id.
type Manager struct {
	connector Connector
	onPress   PressFunc
	logger    logging.Logger

	mu       sync.Mutex
	sessions map[string]*Session

	inflight sync.WaitGroup
}

func NewManager(connector Connector, onPress PressFunc, logger logging.Logger) *Manager {
	if connector == nil {
		connector = NoTransport{}
	}
	return &Manager{
		connector: connector,
		onPress:   onPress,
		logger:    logger.With("module", "session"),
		sessions:  make(map[string]*Session),
	}
}

// Start connects a session for userID and activates it. A session already
// registered under sessionID is stopped and replaced.
func (m *Manager) Start(ctx context.Context, sessionID, userID string) (*Session, error) {
	dev, err := m.connector.Connect(ctx, sessionID, userID)
	if err != nil {
		m.logger.Error(ctx, "session connect failed", "session_id", sessionID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("connect session %s: %w", sessionID, err)
	}

	s := newSession(sessionID, userID, dev)
	s.activate(m.onPress)

	m.mu.Lock()
	old := m.sessions[sessionID]
	m.sessions[sessionID] = s
	m.mu.Unlock()

	if old != nil {
		m.finish(ctx, old, "replaced")
	}

	m.logger.Info(ctx, "Session started", "session_id", sessionID, "user_id", userID)
	return s, nil
}

// HandleButtonPress dispatches press to the session's handler without
// waiting for it. Presses are not serialised per user.
func (m *Manager) HandleButtonPress(sessionID string, press models.ButtonPress) error {
	s, ok := m.Get(sessionID)
	if !ok {
		return common.ErrSessionNotFound
	}

	fn, err := s.handler()
	if err != nil {
		return err
	}
	if fn == nil {
		return nil
	}

	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		ctx := context.Background()
		defer func() {
			if r := recover(); r != nil {
				m.logger.Error(ctx, "button press handler panicked", "session_id", s.ID, "user_id", s.UserID, "panic", r)
			}
		}()

		if err := fn(ctx, s.device, s.UserID, press); err != nil {
			m.logger.Debug(ctx, "button press finished with error", "session_id", s.ID, "user_id", s.UserID, "error", err)
		}
	}()

	return nil
}

// Stop moves the session to Stopped and forgets it. Cached photos and
// tasks of its user are left untouched.
func (m *Manager) Stop(ctx context.Context, sessionID, reason string) error {
	m.mu.Lock()
	s, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()

	if !ok {
		return common.ErrSessionNotFound
	}

	m.finish(ctx, s, reason)
	return nil
}

// StopAll stops every session, e.g. on shutdown.
func (m *Manager) StopAll(ctx context.Context, reason string) {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		m.finish(ctx, s, reason)
	}
}

func (m *Manager) finish(ctx context.Context, s *Session, reason string) {
	if !s.stop(reason) {
		return
	}
	if c, ok := s.device.(io.Closer); ok {
		if err := c.Close(); err != nil {
			m.logger.Warn(ctx, "device close failed", "session_id", s.ID, "error", err)
		}
	}
	m.logger.Info(ctx, "Session stopped", "session_id", s.ID, "user_id", s.UserID, "reason", reason)
}

func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Wait blocks until every dispatched press has returned.
func (m *Manager) Wait() {
	m.inflight.Wait()
}
