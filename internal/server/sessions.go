package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/resume2portfolio/internal/shell"
	"github.com/jonathan/resume2portfolio/internal/upload"
)

// SessionCookie names the cookie carrying the session identifier.
const SessionCookie = "r2p_session"

type session struct {
	shell    *shell.Shell
	lastSeen time.Time
}

// sessionStore keeps one shell per browser session in memory.
type sessionStore struct {
	submitter upload.Submitter
	ttl       time.Duration
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func newSessionStore(submitter upload.Submitter, ttl time.Duration) *sessionStore {
	return &sessionStore{
		submitter: submitter,
		ttl:       ttl,
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// shellFor returns the caller's shell, starting a session when the cookie is
// missing, malformed or expired.
func (st *sessionStore) shellFor(w http.ResponseWriter, r *http.Request) *shell.Shell {
	now := st.now()

	if c, err := r.Cookie(SessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			st.mu.Lock()
			sess, ok := st.sessions[c.Value]
			if ok {
				sess.lastSeen = now
			}
			st.mu.Unlock()
			if ok {
				return sess.shell
			}
		}
	}

	id := uuid.New().String()
	sess := &session{shell: shell.New(st.submitter), lastSeen: now}

	st.mu.Lock()
	st.sessions[id] = sess
	st.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess.shell
}

// sweep drops sessions idle for longer than the TTL.
func (st *sessionStore) sweep() int {
	cutoff := st.now().Add(-st.ttl)

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, sess := range st.sessions {
		if sess.lastSeen.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *sessionStore) sweepEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.sweep(); n > 0 {
				log.Printf("[session] expired %d idle sessions", n)
			}
		}
	}
}

func (st *sessionStore) count() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
