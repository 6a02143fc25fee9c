package bot

import (
	"sync"
	"time"
)

// Stage is where a user is in the conversation.
type Stage int

const (
	StageInitial Stage = iota
	// StagePricing means a pasted list is being priced; further pastes wait.
	StagePricing
)

// UserState represents the current state of a user's interaction
type UserState struct {
	Stage        Stage
	LastActivity time.Time
}

// Sessions tracks user states. Safe for concurrent use.
type Sessions struct {
	mu     sync.Mutex
	states map[int64]*UserState
	now    func() time.Time
}

func NewSessions() *Sessions {
	return &Sessions{states: make(map[int64]*UserState), now: time.Now}
}

// Get returns the user's state, creating an initial one on first contact.
func (s *Sessions) Get(userID int64) UserState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.touch(userID)
}

// BeginPricing moves the user to StagePricing. It reports false when a
// pricing run for the user is already in progress.
func (s *Sessions) BeginPricing(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.touch(userID)
	if st.Stage == StagePricing {
		return false
	}
	st.Stage = StagePricing
	return true
}

// FinishPricing returns the user to StageInitial.
func (s *Sessions) FinishPricing(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(userID).Stage = StageInitial
}

// Prune forgets users idle for longer than maxIdle and returns how many.
// Users with a pricing run in progress are kept.
func (s *Sessions) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for id, st := range s.states {
		if st.Stage != StagePricing && st.LastActivity.Before(cutoff) {
			delete(s.states, id)
			removed++
		}
	}
	return removed
}

func (s *Sessions) touch(userID int64) *UserState {
	st, ok := s.states[userID]
	if !ok {
		st = &UserState{Stage: StageInitial}
		s.states[userID] = st
	}
	st.LastActivity = s.now()
	return st
}
