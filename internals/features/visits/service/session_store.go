package service

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"visitorku_backend/internals/features/visits/wizard"
)

// Session is one kiosk registration in progress: a wizard machine plus the
// bookkeeping to expire it. The machine is not concurrency-safe, so all
// access goes through Do.
type Session struct {
	ID        uuid.UUID
	mu        sync.Mutex
	machine   *wizard.Machine
	lastTouch time.Time
}

// Do runs fn with exclusive access to the session's machine and refreshes
// the idle timer.
func (s *Session) Do(fn func(m *wizard.Machine)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouch = time.Now()
	fn(s.machine)
}

type SessionStore struct {
	mu sync.Mutex
	m  map[uuid.UUID]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{m: make(map[uuid.UUID]*Session)}
}

// Sessions is the process-wide store; kiosk sessions are in-memory only.
var Sessions = NewSessionStore()

func (st *SessionStore) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s := &Session{
		ID:        uuid.New(),
		machine:   wizard.NewMachine(nil),
		lastTouch: time.Now(),
	}
	st.m[s.ID] = s
	return s
}

func (st *SessionStore) Get(id uuid.UUID) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.m[id]
	return s, ok
}

func (st *SessionStore) Delete(id uuid.UUID) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.m, id)
}

func (st *SessionStore) pruneIdle(ttl time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	cutoff := time.Now().Add(-ttl)
	for id, s := range st.m {
		s.mu.Lock()
		idle := s.lastTouch.Before(cutoff)
		s.mu.Unlock()
		if idle {
			delete(st.m, id)
			n++
		}
	}
	return n
}

// StartSessionJanitor prunes abandoned kiosk sessions in the background.
func StartSessionJanitor(ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := Sessions.pruneIdle(ttl); n > 0 {
				log.Printf("[INFO] session janitor: pruned %d idle sessions", n)
			}
		}
	}()
}
