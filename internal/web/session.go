package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/godilite/survey-form/internal/overlay"
	"github.com/google/uuid"
)

const (
	sessionCookie = "survey_session"
	sessionMaxAge = 24 * 60 * 60
	sessionIdle   = sessionMaxAge * time.Second
)

// sessionID returns the visitor's session id, issuing a new cookie when
// the request has none or carries a malformed one.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

type boardEntry struct {
	board    *overlay.Board
	lastSeen time.Time
}

// boards maps session ids to their overlay board. A board exists only once
// the session has submitted.
type boards struct {
	mu  sync.Mutex
	m   map[string]*boardEntry
	now func() time.Time
}

func newBoards() *boards {
	return &boards{m: make(map[string]*boardEntry), now: time.Now}
}

// get returns the session's board, creating it if needed.
func (b *boards) get(session string) *overlay.Board {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.m[session]
	if !ok {
		e = &boardEntry{board: &overlay.Board{}}
		b.m[session] = e
	}
	e.lastSeen = b.now()
	return e.board
}

// lookup returns the session's board or nil.
func (b *boards) lookup(session string) *overlay.Board {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.m[session]
	if !ok {
		return nil
	}
	e.lastSeen = b.now()
	return e.board
}

// evictIdle drops boards not seen for maxIdle and returns their sessions.
func (b *boards) evictIdle(maxIdle time.Duration) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	cutoff := b.now().Add(-maxIdle)
	var evicted []string
	for session, e := range b.m {
		if e.lastSeen.Before(cutoff) {
			delete(b.m, session)
			evicted = append(evicted, session)
		}
	}
	return evicted
}

func (b *boards) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.m)
}
