package narration

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// ErrEmptySession is returned when a claim has no session id.
var ErrEmptySession = errors.New("session id is required")

// TrackerConfig holds configuration for the narration tracker.
type TrackerConfig struct {
	// IdleTTL drops sessions not seen for this long on Sweep (default: 30 minutes).
	IdleTTL time.Duration

	// Now overrides the clock (tests).
	Now func() time.Time
}

// Tracker remembers, per session, the last city narrated and whether its
// narration was already spoken. Changing city resets the flag.
type Tracker struct {
	mu       sync.Mutex
	sessions map[string]*session
	idleTTL  time.Duration
	now      func() time.Time
}

type session struct {
	lastCity string
	spoken   bool
	greeted  bool
	seenAt   time.Time
}

// NewTracker creates a new narration tracker.
func NewTracker(cfg TrackerConfig) *Tracker {
	idleTTL := cfg.IdleTTL
	if idleTTL == 0 {
		idleTTL = 30 * time.Minute
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		sessions: make(map[string]*session),
		idleTTL:  idleTTL,
		now:      now,
	}
}

// Claim reports whether the caller should narrate city for the session.
// It returns true at most once per (session, city) until the city changes.
func (t *Tracker) Claim(sessionID, city string) (bool, error) {
	if sessionID == "" {
		return false, ErrEmptySession
	}
	key := normalize(city)

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.touch(sessionID)
	if s.lastCity != key {
		s.lastCity = key
		s.spoken = false
	}
	if s.spoken {
		return false, nil
	}
	s.spoken = true
	return true, nil
}

// Greet reports whether the session still needs its greeting, marking it greeted.
func (t *Tracker) Greet(sessionID string) (bool, error) {
	if sessionID == "" {
		return false, ErrEmptySession
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.touch(sessionID)
	if s.greeted {
		return false, nil
	}
	s.greeted = true
	return true, nil
}

// Forget drops all state for a session.
func (t *Tracker) Forget(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, sessionID)
}

// Sweep removes idle sessions and returns how many were dropped.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-t.idleTTL)
	dropped := 0
	for id, s := range t.sessions {
		if s.seenAt.Before(cutoff) {
			delete(t.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of tracked sessions.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.sessions)
}

// touch must be called with t.mu held.
func (t *Tracker) touch(id string) *session {
	s, ok := t.sessions[id]
	if !ok {
		s = &session{}
		t.sessions[id] = s
	}
	s.seenAt = t.now()
	return s
}

func normalize(city string) string {
	return strings.ToLower(strings.Join(strings.Fields(city), " "))
}
