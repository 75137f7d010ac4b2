package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"blog-console/cmd/console/dto"
	"blog-console/cmd/internal/logger"
)

// NewDraftKey is the composer key of the create form.
const NewDraftKey = "new"

// BlogBackend is everything a console session needs from the blog API.
type BlogBackend interface {
	PostLister
	PostFetcher
	PostWriter
}

type SessionOptions struct {
	TTL         time.Duration
	Coordinator CoordinatorOptions
	Cache       DetailCacheOptions
	Composer    ComposerOptions
}

// Session is the state of one browser: its list coordinator, its detail cache,
// its open composer drafts and pending flash messages.
type Session struct {
	ID          string
	Coordinator *Coordinator
	Cache       *DetailCache

	backend  BlogBackend
	compOpts ComposerOptions

	mu        sync.Mutex
	composers map[string]*Composer
	flashes   []dto.Flash
	lastSeen  time.Time
}

// Composer returns the composer for key, creating an empty one on first use.
// The second result is true when it was created.
func (s *Session) Composer(key string) (*Composer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.composers[key]; ok {
		return c, false
	}
	c := NewComposer(s.backend, s.Cache, s.compOpts)
	s.composers[key] = c
	return c, true
}

// LookupComposer returns an existing composer without creating one.
func (s *Session) LookupComposer(key string) (*Composer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.composers[key]
	return c, ok
}

// ForgetComposer drops the draft for key so the next open reloads it.
func (s *Session) ForgetComposer(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.composers, key)
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(kind, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flashes = append(s.flashes, dto.Flash{Kind: kind, Message: message})
}

// PopFlashes returns and clears the queued messages.
func (s *Session) PopFlashes() []dto.Flash {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.flashes
	s.flashes = nil
	return out
}

// SessionStore keeps sessions in memory and expires them after TTL of inactivity.
type SessionStore struct {
	backend BlogBackend
	opts    SessionOptions
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(backend BlogBackend, opts SessionOptions) *SessionStore {
	if opts.TTL <= 0 {
		opts.TTL = 12 * time.Hour
	}
	return &SessionStore{
		backend:  backend,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns a live session and refreshes its last access time.
func (st *SessionStore) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	st.mu.Lock()
	defer st.mu.Unlock()

	s, ok := st.sessions[id]
	if !ok {
		return nil, false
	}
	now := st.now()
	if now.Sub(s.touchedAt()) > st.opts.TTL {
		delete(st.sessions, id)
		return nil, false
	}
	s.touch(now)
	return s, true
}

// GetOrCreate returns the session for id or a new one under a fresh id.
func (st *SessionStore) GetOrCreate(id string) (*Session, bool) {
	if s, ok := st.Get(id); ok {
		return s, false
	}
	return st.Create(), true
}

func (st *SessionStore) Create() *Session {
	s := st.newSession()

	st.mu.Lock()
	st.sessions[s.ID] = s
	size := len(st.sessions)
	st.mu.Unlock()

	logger.DebugWithFields("console session created", logger.Fields{
		"session_id": s.ID,
		"sessions":   size,
	})
	return s
}

// Detached builds a session that is never stored. It serves a single request
// from a client without a console cookie.
func (st *SessionStore) Detached() *Session {
	return st.newSession()
}

func (st *SessionStore) newSession() *Session {
	s := &Session{
		ID:          uuid.NewString(),
		Coordinator: NewCoordinator(st.backend, st.opts.Coordinator),
		Cache:       NewDetailCache(st.backend, st.opts.Cache),
		backend:     st.backend,
		compOpts:    st.opts.Composer,
		composers:   make(map[string]*Composer),
	}
	s.touch(st.now())
	return s
}

// Sweep removes expired sessions and returns how many were dropped.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.touchedAt()) > st.opts.TTL {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// TTL is the inactivity timeout of a session.
func (st *SessionStore) TTL() time.Duration {
	return st.opts.TTL
}

func (s *Session) touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = t
}

func (s *Session) touchedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
