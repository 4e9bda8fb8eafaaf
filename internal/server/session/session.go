// Package session tracks device sessions and routes their button events.
//
// A session moves Created → Active → Stopped. Capture and upload are not
// session states; each press runs on its own and may overlap with others.
// Stopping a session leaves the user's cached photo and task in place.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophcam/internal/common"
	"github.com/dmitrijs2005/gophcam/internal/server/device"
	"github.com/dmitrijs2005/gophcam/internal/server/models"
)

type State int

const (
	StateCreated State = iota
	StateActive
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateActive:
		return "active"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// PressFunc handles one button press for a session's user.
type PressFunc func(ctx context.Context, dev device.Device, userID string, press models.ButtonPress) error

// Session is one live connection between a user's device and the service.
type Session struct {
	ID        string
	UserID    string
	StartedAt time.Time

	device device.Device

	mu         sync.Mutex
	state      State
	onPress    PressFunc
	stopReason string
}

func newSession(id, userID string, dev device.Device) *Session {
	return &Session{ID: id, UserID: userID, StartedAt: time.Now(), device: dev, state: StateCreated}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) StopReason() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopReason
}

// activate registers the press handler; only a Created session activates.
func (s *Session) activate(fn PressFunc) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCreated {
		return false
	}
	s.onPress = fn
	s.state = StateActive
	return true
}

// stop reports whether this call performed the transition.
func (s *Session) stop(reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateStopped {
		return false
	}
	s.state = StateStopped
	s.stopReason = reason
	s.onPress = nil
	return true
}

func (s *Session) handler() (PressFunc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateActive {
		return nil, common.ErrSessionStopped
	}
	return s.onPress, nil
}
