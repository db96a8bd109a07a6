package server

import (
	"sort"
	"sync"
)

// Store keeps live sessions in memory, keyed by join code. Each session has
// its own lock, so mutations on one session serialize while other sessions
// proceed concurrently.
type Store struct {
	mu    sync.RWMutex
	slots map[string]*sessionSlot
}

type sessionSlot struct {
	mu      sync.Mutex
	session *Session
}

func NewStore() *Store {
	return &Store{
		slots: make(map[string]*sessionSlot),
	}
}

// Put registers a new session. The code must not collide with a live one.
// The stored session is a detached copy of the argument.
func (s *Store) Put(session *Session) error {
	if session == nil {
		return errf(errValidation, "session is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.slots[session.Code]; ok {
		return errf(errConflict, "session code already in use")
	}
	s.slots[session.Code] = &sessionSlot{session: cloneSession(session)}
	return nil
}

// Get returns a detached copy of the session. The stored session is only
// ever touched under its slot lock, so readers never race a mutation.
func (s *Store) Get(code string) (*Session, bool) {
	s.mu.RLock()
	slot, ok := s.slots[code]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return cloneSession(slot.session), true
}

// Update applies a mutation to the session under its lock. The mutation
// either fully applies or, when it returns an error, leaves no visible
// change behind; callers must not mutate before their last failure check.
// On success the caller receives a detached copy of the new state.
func (s *Store) Update(code string, update func(session *Session) error) (*Session, error) {
	s.mu.RLock()
	slot, ok := s.slots[code]
	s.mu.RUnlock()
	if !ok {
		return nil, errf(errNotFound, "session not found")
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if err := update(slot.session); err != nil {
		return nil, err
	}
	return cloneSession(slot.session), nil
}

func (s *Store) Remove(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, code)
}

func (s *Store) Codes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	codes := make([]string, 0, len(s.slots))
	for code := range s.slots {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

func cloneSession(session *Session) *Session {
	copied := *session
	copied.Players = append([]Player(nil), session.Players...)
	copied.Rounds = make([]Round, len(session.Rounds))
	for i := range session.Rounds {
		round := session.Rounds[i]
		round.Captions = append([]Caption(nil), session.Rounds[i].Captions...)
		for j := range round.Captions {
			if round.Captions[j].Score != nil {
				score := *round.Captions[j].Score
				round.Captions[j].Score = &score
			}
		}
		copied.Rounds[i] = round
	}
	return &copied
}
