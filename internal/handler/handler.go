// Package handler holds the HTTP surface of the calendar. Sub-packages
// register their routes on a gin.RouterGroup.
package handler

import (
	"sync"

	"github.com/jwalitptl/clinic-calendar/internal/service/scheduling"
)

// Session serializes access to the scheduling controller. The controller
// models a single front-desk session and is not safe for concurrent use.
type Session struct {
	mu   sync.Mutex
	ctrl *scheduling.Controller
}

func NewSession(ctrl *scheduling.Controller) *Session {
	return &Session{ctrl: ctrl}
}

// Do runs fn while holding the session lock.
func (s *Session) Do(fn func(*scheduling.Controller) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.ctrl)
}
