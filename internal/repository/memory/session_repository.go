package memory

import (
	"sync/atomic"
	"time"

	"agora-be/pkg/tutor/state"

	"github.com/patrickmn/go-cache"
)

// Session is one live tutoring session. The busy flag guards against a
// second turn starting while one is still being processed.
type Session struct {
	State *state.TutorState
	busy  atomic.Bool
}

// BeginTurn claims the session for a turn. It returns false when another
// turn is already in flight; the caller should reject the input.
func (s *Session) BeginTurn() bool {
	return s.busy.CompareAndSwap(false, true)
}

// EndTurn releases the session after a turn completes
func (s *Session) EndTurn() {
	s.busy.Store(false)
}

type SessionRepository struct {
	cache *cache.Cache
}

func NewSessionRepository(ttl time.Duration) *SessionRepository {
	if ttl <= 0 {
		ttl = 1 * time.Hour
	}
	// Purge expired sessions every 10 minutes
	c := cache.New(ttl, 10*time.Minute)
	return &SessionRepository{
		cache: c,
	}
}

func (r *SessionRepository) Save(session *Session) {
	r.cache.Set(session.State.SessionID, session, cache.DefaultExpiration)
}

func (r *SessionRepository) Get(sessionID string) (*Session, bool) {
	if x, found := r.cache.Get(sessionID); found {
		return x.(*Session), true
	}
	return nil, false
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}
