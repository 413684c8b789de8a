package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sessionCookie = "gs_session"
	sessionIdle   = 24 * time.Hour
)

// QuizProgress is where a visitor is in one guide's quiz.
type QuizProgress struct {
	GuideID   string
	Index     int
	Submitted bool
	Answer    string
	Correct   int
}

// FlashcardProgress is the card a visitor last looked at.
type FlashcardProgress struct {
	GuideID string
	Index   int
}

type session struct {
	quiz     map[string]*QuizProgress
	cards    map[string]*FlashcardProgress
	history  []string // guide IDs, most recent first
	lastSeen time.Time
}

// sessions keeps per-visitor progress in memory, keyed by the gs_session cookie.
type sessions struct {
	mu sync.Mutex
	m  map[string]*session
}

func newSessions() *sessions {
	return &sessions{m: make(map[string]*session)}
}

// id returns the visitor's session ID, issuing a cookie on first visit.
func (s *sessions) id(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// with runs fn on session id under the lock.
func (s *sessions) with(id string, fn func(*session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[id]
	if !ok {
		s.pruneLocked()
		sess = &session{
			quiz:  make(map[string]*QuizProgress),
			cards: make(map[string]*FlashcardProgress),
		}
		s.m[id] = sess
	}
	sess.lastSeen = time.Now()
	fn(sess)
}

func (s *sessions) pruneLocked() {
	cutoff := time.Now().Add(-sessionIdle)
	for id, sess := range s.m {
		if sess.lastSeen.Before(cutoff) {
			delete(s.m, id)
		}
	}
}

func (sess *session) quizFor(guideID string) *QuizProgress {
	p, ok := sess.quiz[guideID]
	if !ok {
		p = &QuizProgress{GuideID: guideID}
		sess.quiz[guideID] = p
	}
	return p
}

func (sess *session) cardsFor(guideID string) *FlashcardProgress {
	p, ok := sess.cards[guideID]
	if !ok {
		p = &FlashcardProgress{GuideID: guideID}
		sess.cards[guideID] = p
	}
	return p
}

// visit moves guideID to the front of the history, keeping at most historyLimit entries.
func (sess *session) visit(guideID string) {
	out := []string{guideID}
	for _, id := range sess.history {
		if len(out) == historyLimit {
			break
		}
		if id != guideID {
			out = append(out, id)
		}
	}
	sess.history = out
}

// reset clears quiz and flashcard progress. History is kept.
func (sess *session) reset() {
	sess.quiz = make(map[string]*QuizProgress)
	sess.cards = make(map[string]*FlashcardProgress)
}
