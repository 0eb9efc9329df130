package kitchen

import (
	"sync"
	"time"

	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/chat"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/domain/recipe"
	"github.com/Shunsena-Jian/kasalo-kusina/internal/ports/inbound"
	"go.uber.org/zap"
)

// Session is the explicit application-state object for one user's
// kitchen: the current recipe, the chat transcript, the UI-facing
// flags, and the session's rate limiter. All mutation goes through
// Service operations; the mutex only serializes handler access — the
// in-flight flags, not locking, are what keep requests one-at-a-time.
type Session struct {
	mu sync.Mutex

	id                 string
	recipe             *recipe.Recipe
	transcript         chat.Transcript
	analyzing          bool
	awaitingReply      bool
	imageInputDisabled bool
	notice             string
	limiter            *RateLimiter

	lastUsed time.Time
}

// snapshot builds a detached copy of the session state. Callers must
// hold s.mu.
func (s *Session) snapshot() *inbound.KitchenSnapshot {
	open, cooldown := s.limiter.Gate()
	return &inbound.KitchenSnapshot{
		Recipe:             s.recipe.Clone(),
		Transcript:         s.transcript.Clone(),
		Analyzing:          s.analyzing,
		AwaitingReply:      s.awaitingReply,
		ImageInputDisabled: s.imageInputDisabled,
		Notice:             s.notice,
		RateLimited:        !open,
		CooldownMessage:    cooldown,
	}
}

// SessionStore holds the live kitchen sessions, keyed by the session ID
// minted at login. Sessions idle past the TTL are dropped by a cleanup
// loop; dropping one simply loses the in-progress conversation, which
// matches the ephemeral, per-session ownership of all kitchen state.
type SessionStore struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	ttl        time.Duration
	newLimiter func() *RateLimiter
	logger     *zap.Logger
}

// NewSessionStore creates a session store. newLimiter produces the
// per-session rate limiter; passing nil uses the default window.
func NewSessionStore(ttl time.Duration, newLimiter func() *RateLimiter, logger *zap.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if newLimiter == nil {
		newLimiter = func() *RateLimiter {
			return NewRateLimiter(DefaultWindowMax, DefaultWindowSize, nil)
		}
	}
	store := &SessionStore{
		sessions:   make(map[string]*Session),
		ttl:        ttl,
		newLimiter: newLimiter,
		logger:     logger.Named("kitchen-sessions"),
	}

	go store.cleanupExpired()

	return store
}

// Get returns the session for the given ID, creating it on first use.
func (st *SessionStore) Get(id string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if ok {
		s.mu.Lock()
		s.lastUsed = time.Now()
		s.mu.Unlock()
		return s
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok = st.sessions[id]; ok {
		return s
	}
	s = &Session{
		id:       id,
		limiter:  st.newLimiter(),
		lastUsed: time.Now(),
	}
	st.sessions[id] = s
	st.logger.Debug("Kitchen session created", zap.String("session_id", id))
	return s
}

// Drop removes a session, discarding its state.
func (st *SessionStore) Drop(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-st.ttl)
		st.mu.Lock()
		for id, s := range st.sessions {
			s.mu.Lock()
			idle := s.lastUsed.Before(cutoff)
			s.mu.Unlock()
			if idle {
				delete(st.sessions, id)
				st.logger.Debug("Kitchen session expired", zap.String("session_id", id))
			}
		}
		st.mu.Unlock()
	}
}
