package eligibility

import (
	"time"

	"github.com/ffx-assist/program-finder/internal/models"
)

// Session drives one resident's walk through the questionnaire. It owns
// the only mutable state in the core — the answer set and the current
// position — and recomputes candidates and the active question list on
// demand after every change. It is not safe for concurrent use; each
// resident gets their own.
type Session struct {
	programs  []models.Program
	questions []models.Question
	today     time.Time

	answers AnswerSet
	index   int
}

func NewSession(programs []models.Program, questions []models.Question, today time.Time) *Session {
	return &Session{
		programs:  programs,
		questions: questions,
		today:     today,
		answers:   AnswerSet{},
	}
}

// Answer records one answer and clamps the position into the (possibly
// shrunken) active list.
func (s *Session) Answer(code string, v Value) {
	s.answers = s.answers.With(code, v)
	s.clamp()
}

// Reset discards all answers and returns to the first question.
func (s *Session) Reset() {
	s.answers = AnswerSet{}
	s.index = 0
}

func (s *Session) Answers() AnswerSet { return s.answers }

// Matches returns the programs the resident currently qualifies for.
func (s *Session) Matches() []models.Program {
	return MatchingPrograms(s.programs, s.answers, s.today)
}

// Active returns the questionnaire's effective script for the current
// answer set.
func (s *Session) Active() []models.Question {
	return ActiveQuestions(s.questions, s.answers, s.Matches())
}

// Current returns the question at the session position, or ok=false
// when no questions remain.
func (s *Session) Current() (models.Question, bool) {
	active := s.Active()
	if s.index >= len(active) {
		return models.Question{}, false
	}
	return active[s.index], true
}

// Next advances by one, never past the end of the active list.
func (s *Session) Next() (models.Question, bool) {
	active := s.Active()
	if s.index < len(active)-1 {
		s.index++
	}
	if s.index >= len(active) {
		return models.Question{}, false
	}
	return active[s.index], true
}

// Prev retreats by one, never below zero.
func (s *Session) Prev() (models.Question, bool) {
	if s.index > 0 {
		s.index--
	}
	active := s.Active()
	if s.index >= len(active) {
		return models.Question{}, false
	}
	return active[s.index], true
}

func (s *Session) Index() int { return s.index }

func (s *Session) clamp() {
	if n := len(s.Active()); s.index >= n && n > 0 {
		s.index = n - 1
	} else if n == 0 {
		s.index = 0
	}
}
